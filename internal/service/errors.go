package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ==================== 错误定义 ====================

var (
	ErrNotFound           = errors.New("未找到")
	ErrInvalidCredentials = errors.New("邮箱或密码错误，或账号未激活")
	ErrInvalidToken       = errors.New("Token 无效或已过期")
	ErrStaleToken         = errors.New("账号已激活，该链接已失效")
	ErrTooManyRequests    = errors.New("操作过于频繁")
)

// NonFieldErrors 不属于具体字段的错误 key
const NonFieldErrors = "non_field_errors"

// FieldErrors 字段校验错误，key 为 json 字段名
type FieldErrors map[string]string

// Add 同一字段只保留第一条
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// OrNil 没有错误时返回 nil，避免把空 map 当 error 返回
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

// ==================== 数据库写错误 ====================

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// translateWriteError 把约束冲突转成 FieldErrors，其余原样返回
// 预校验挡住了绝大多数情况，这里处理并发写入导致的冲突
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return FieldErrors{constraintField(pgErr.ConstraintName, "idx_", pgErr.TableName): "该值已存在。"}
		case pgForeignKeyViolation:
			return FieldErrors{constraintField(pgErr.ConstraintName, "fk_", pgErr.TableName): "关联对象不存在。"}
		case pgNotNullViolation:
			field := pgErr.ColumnName
			if field == "" {
				field = NonFieldErrors
			}
			return FieldErrors{field: "该字段不能为空。"}
		case pgCheckViolation:
			return FieldErrors{NonFieldErrors: "数据不满足约束: " + pgErr.ConstraintName}
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return FieldErrors{NonFieldErrors: "该值已存在。"}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return FieldErrors{NonFieldErrors: "关联对象不存在。"}
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return FieldErrors{NonFieldErrors: "数据不满足约束。"}
	}
	return err
}

// constraintField 从 gorm 生成的约束名还原字段名
// idx_users_email -> email，fk_orders_user -> user
func constraintField(name, prefix, table string) string {
	p := prefix + table + "_"
	if table != "" && strings.HasPrefix(name, p) && len(name) > len(p) {
		return name[len(p):]
	}
	return NonFieldErrors
}
