package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 订单 ====================

// OrderRequest 创建 / 替换订单，order_details 只读，写入时忽略
type OrderRequest struct {
	User        *int64           `json:"user" binding:"required"`
	TotalAmount *decimal.Decimal `json:"total_amount" binding:"required,money" swaggertype:"string" example:"39.98"`
}

// OrderResponse 订单及其明细
type OrderResponse struct {
	ID           int64                 `json:"id"`
	User         int64                 `json:"user"`
	OrderDate    time.Time             `json:"order_date"`
	TotalAmount  string                `json:"total_amount" example:"39.98"`
	OrderDetails []OrderDetailResponse `json:"order_details"`
}

// ==================== 订单明细 ====================

// OrderDetailRequest 创建 / 替换订单明细
type OrderDetailRequest struct {
	Order    *int64           `json:"order" binding:"required"`
	Product  *int64           `json:"product" binding:"required"`
	Quantity *int             `json:"quantity" binding:"required,min=1"`
	Subtotal *decimal.Decimal `json:"subtotal" binding:"required,money" swaggertype:"string" example:"19.99"`
}

// OrderDetailResponse 订单明细
type OrderDetailResponse struct {
	ID       int64  `json:"id"`
	Order    int64  `json:"order"`
	Product  int64  `json:"product"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal" example:"19.99"`
}

// ==================== 购物车 ====================

// CartRequest 创建 / 替换购物车条目
type CartRequest struct {
	User     *int64 `json:"user" binding:"required"`
	Product  *int64 `json:"product" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required,min=1"`
}

// CartResponse 购物车条目
type CartResponse struct {
	ID       int64 `json:"id"`
	User     int64 `json:"user"`
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}
