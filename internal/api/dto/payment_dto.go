package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 支付 ====================

// PaymentRequest 创建 / 替换支付记录，success 缺省为 false
type PaymentRequest struct {
	User    *int64           `json:"user" binding:"required"`
	Amount  *decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"39.98"`
	Success *bool            `json:"success"`
}

// PaymentResponse 支付记录
type PaymentResponse struct {
	ID        int64     `json:"id"`
	User      int64     `json:"user"`
	Amount    string    `json:"amount" example:"39.98"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// ==================== 发票 ====================

// InvoiceRequest 创建 / 替换发票，payment 可以为 null
type InvoiceRequest struct {
	Order   *int64           `json:"order" binding:"required"`
	Amount  *decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"39.98"`
	Payment *int64           `json:"payment"`
}

// InvoiceResponse 发票
type InvoiceResponse struct {
	ID      int64  `json:"id"`
	Order   int64  `json:"order"`
	Amount  string `json:"amount" example:"39.98"`
	Payment *int64 `json:"payment"`
}
