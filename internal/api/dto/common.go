package dto

import "github.com/shopspring/decimal"

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int               `json:"code" example:"400"`
	Message string            `json:"message" example:"参数错误"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Money 金额统一输出两位小数字符串
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
