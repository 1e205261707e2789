package dto

import "github.com/shopspring/decimal"

// ==================== 品牌 / 分类 ====================

// BrandRequest 创建 / 替换品牌
type BrandRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Anker"`
}

// BrandResponse 品牌
type BrandResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRequest 创建 / 替换分类
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Power Banks"`
}

// CategoryResponse 分类
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ==================== 商品 ====================

// ProductRequest 创建 / 替换商品，brand 和 category 可以为 null
type ProductRequest struct {
	Name          string           `json:"name" binding:"required,max=100"`
	Description   string           `json:"description" binding:"required"`
	Price         *decimal.Decimal `json:"price" binding:"required,money,money_nonneg" swaggertype:"string" example:"19.99"`
	StockQuantity *int             `json:"stock_quantity" binding:"required,min=0"`
	Brand         *int64           `json:"brand"`
	Category      *int64           `json:"category"`
}

// ProductResponse 商品
type ProductResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price" example:"19.99"`
	StockQuantity int    `json:"stock_quantity"`
	Brand         *int64 `json:"brand"`
	Category      *int64 `json:"category"`
}
