package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ==================== CrudController 通用控制器 ====================

// CrudHandler 控制器依赖的服务能力，service.CrudService 实现了它
type CrudHandler[R any, V any] interface {
	List(ctx context.Context) ([]V, error)
	Get(ctx context.Context, id int64) (V, error)
	Create(ctx context.Context, req *R) (V, error)
	Replace(ctx context.Context, id int64, req *R) (V, error)
	Delete(ctx context.Context, id int64) error
}

// CrudController 一个资源的列表、详情、创建、替换、删除
type CrudController[R any, V any] struct {
	svc CrudHandler[R, V]
}

// NewCrudController 创建通用控制器
func NewCrudController[R any, V any](svc CrudHandler[R, V]) *CrudController[R, V] {
	return &CrudController[R, V]{svc: svc}
}

// Register 在 group 下挂载 /path 和 /path/:id
func (h *CrudController[R, V]) Register(group *gin.RouterGroup, path string) {
	group.GET(path, h.List)
	group.POST(path, h.Create)
	group.GET(path+"/:id", h.Retrieve)
	group.PUT(path+"/:id", h.Replace)
	group.DELETE(path+"/:id", h.Delete)
}

// List 返回全部记录（JSON 数组）
func (h *CrudController[R, V]) List(ctx *gin.Context) {
	list, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// Retrieve 单条记录
func (h *CrudController[R, V]) Retrieve(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	v, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, v)
}

// Create 创建，成功返回 201
func (h *CrudController[R, V]) Create(ctx *gin.Context) {
	var req R
	if !bindJSON(ctx, &req) {
		return
	}

	v, err := h.svc.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, v)
}

// Replace 整体替换
func (h *CrudController[R, V]) Replace(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req R
	if !bindJSON(ctx, &req) {
		return
	}

	v, err := h.svc.Replace(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, v)
}

// Delete 删除，成功返回 204 无响应体
func (h *CrudController[R, V]) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
