package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ==================== 校验规则 ====================

// PasswordMaxBytes bcrypt 只接受 72 字节以内的输入
const PasswordMaxBytes = 72

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

	// numeric(10,2) 的上限
	moneyLimit = decimal.New(1, 8)

	registerOnce sync.Once
)

// RegisterValidators 向 gin 的校验器注册自定义规则
// - money: 最多 2 位小数，整数部分最多 8 位
// - money_nonneg: 不小于 0
// - username: 字母（含非 ASCII）、数字和 @ . + - _
// - password: UTF-8 编码后不超过 72 字节
// 错误字段名取 json tag
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("money_nonneg", validateMoneyNonNeg)
		_ = v.RegisterValidation("username", validateUsername)
		_ = v.RegisterValidation("password", validatePassword)
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// decimalValue 让校验器把 decimal.Decimal 当字符串处理
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func validateMoney(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	if !d.Equal(d.Round(2)) {
		return false
	}
	return d.Abs().LessThan(moneyLimit)
}

func validateMoneyNonNeg(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsNegative()
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validatePassword(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= PasswordMaxBytes
}
