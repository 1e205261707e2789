package service

import (
	"context"
	"fmt"

	"priceoye_shop_v1/internal/repository"
)

// ==================== Schema 序列化规则 ====================

// Schema 一个实体的校验、赋值、输出规则
// M 为 gorm 模型，R 为请求体，V 为响应体
type Schema[M any, R any, V any] interface {
	// Validate 只做需要查库的校验（唯一、外键），id 为 0 表示新建
	Validate(ctx context.Context, id int64, req *R) error
	// Apply 把请求写到模型上，可选字段缺省时置空
	Apply(req *R, m *M) error
	Render(m *M) V
}

// ==================== CrudService 通用服务 ====================

// CrudService 通用增删改查
type CrudService[M any, R any, V any] struct {
	repo   repository.CrudRepository[M]
	schema Schema[M, R, V]
}

// NewCrudService 创建通用服务
func NewCrudService[M any, R any, V any](repo repository.CrudRepository[M], schema Schema[M, R, V]) *CrudService[M, R, V] {
	return &CrudService[M, R, V]{repo: repo, schema: schema}
}

// List 全部记录，按 ID 升序
func (s *CrudService[M, R, V]) List(ctx context.Context) ([]V, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询列表失败: %w", err)
	}

	out := make([]V, 0, len(list))
	for i := range list {
		out = append(out, s.schema.Render(&list[i]))
	}
	return out, nil
}

// Get 单条记录
func (s *CrudService[M, R, V]) Get(ctx context.Context, id int64) (V, error) {
	var zero V
	m, err := s.load(ctx, id)
	if err != nil {
		return zero, err
	}
	return s.schema.Render(m), nil
}

// Create 校验通过后写入
func (s *CrudService[M, R, V]) Create(ctx context.Context, req *R) (V, error) {
	var zero V
	if err := s.schema.Validate(ctx, 0, req); err != nil {
		return zero, err
	}

	var m M
	if err := s.schema.Apply(req, &m); err != nil {
		return zero, err
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return zero, translateWriteError(err)
	}
	return s.schema.Render(&m), nil
}

// Replace 整体替换，记录不存在返回 ErrNotFound
func (s *CrudService[M, R, V]) Replace(ctx context.Context, id int64, req *R) (V, error) {
	var zero V
	m, err := s.load(ctx, id)
	if err != nil {
		return zero, err
	}

	if err := s.schema.Validate(ctx, id, req); err != nil {
		return zero, err
	}
	if err := s.schema.Apply(req, m); err != nil {
		return zero, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return zero, translateWriteError(err)
	}
	return s.schema.Render(m), nil
}

// Delete 删除记录，级联由模型钩子完成
func (s *CrudService[M, R, V]) Delete(ctx context.Context, id int64) error {
	m, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, m); err != nil {
		return fmt.Errorf("删除失败: %w", err)
	}
	return nil
}

func (s *CrudService[M, R, V]) load(ctx context.Context, id int64) (*M, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询失败: %w", err)
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// ==================== 校验辅助 ====================

// checkUnique 值已被其他记录占用时记一条字段错误
func checkUnique[T any](ctx context.Context, errs FieldErrors, repo repository.CrudRepository[T], field, column string, value interface{}, id int64) error {
	taken, err := repo.ExistsBy(ctx, column, value, id)
	if err != nil {
		return err
	}
	if taken {
		errs.Add(field, fmt.Sprintf("具有该 %s 的记录已存在。", field))
	}
	return nil
}

// checkRef 外键必须指向已存在的记录，ref 为 nil 时跳过
func checkRef[T any](ctx context.Context, errs FieldErrors, repo repository.CrudRepository[T], field string, ref *int64) error {
	if ref == nil {
		return nil
	}
	ok, err := repo.Exists(ctx, *ref)
	if err != nil {
		return err
	}
	if !ok {
		errs.Add(field, fmt.Sprintf("无效的主键 \"%d\"，对象不存在。", *ref))
	}
	return nil
}
