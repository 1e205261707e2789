package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/service"
)

// ==================== 错误响应 ====================

// respondError 按错误类型返回对应状态码
func respondError(ctx *gin.Context, err error) {
	var fieldErrs service.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数校验失败",
			"errors":  fieldErrs,
		})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "未找到。",
		})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrStaleToken):
		ctx.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrTooManyRequests):
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"code":    429,
			"message": err.Error(),
		})
	default:
		_ = ctx.Error(err)
		zerolog.Ctx(ctx.Request.Context()).Error().Err(err).Msg("请求处理失败")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "服务器内部错误",
		})
	}
}

// ==================== 请求解析 ====================

// bindJSON 解析并校验请求体，失败时已写好 400 响应
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		respondError(ctx, bindingErrors(err))
		return false
	}
	return true
}

// bindingErrors 把 gin / validator 的错误转成按字段的 FieldErrors
func bindingErrors(err error) service.FieldErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := service.FieldErrors{}
		for _, e := range verrs {
			fe.Add(e.Field(), fieldMessage(e))
		}
		return fe
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return service.FieldErrors{typeErr.Field: fmt.Sprintf("类型错误，需要 %s。", typeErr.Type)}
	}
	return service.FieldErrors{service.NonFieldErrors: "请求体格式错误: " + err.Error()}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "该字段是必填项。"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("确保该字段不超过 %s 个字符。", e.Param())
		}
		return fmt.Sprintf("确保该值小于或等于 %s。", e.Param())
	case "min":
		return fmt.Sprintf("确保该值大于或等于 %s。", e.Param())
	case "email":
		return "请输入合法的邮件地址。"
	case "username":
		return "用户名只能包含字母、数字和 @/./+/-/_ 字符。"
	case "password":
		return fmt.Sprintf("确保密码不超过 %d 字节。", middleware.PasswordMaxBytes)
	case "money":
		return "确保总位数不超过 10 位，小数不超过 2 位。"
	case "money_nonneg":
		return "确保该值大于或等于 0。"
	}
	return "该字段不合法。"
}

// parseID 路径里的 id，非法时按不存在处理
func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(ctx, service.ErrNotFound)
		return 0, false
	}
	return id, true
}
