package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== 品牌 / 分类 ====================

// Brand 品牌
type Brand struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

func (Brand) TableName() string {
	return "brands"
}

// BeforeDelete 品牌删除后商品保留，只清空引用
func (b *Brand) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Product{}).Where("brand_id = ?", b.ID).Update("brand_id", nil).Error
}

// Category 分类
type Category struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeDelete 同品牌，只清空引用
func (c *Category) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Product{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error
}

// ==================== 商品 ====================

// Product 商品
type Product struct {
	BaseModel
	Name          string          `gorm:"size:100;not null"`
	Description   string          `gorm:"type:text;not null"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	StockQuantity int             `gorm:"not null;check:chk_products_stock_quantity,stock_quantity >= 0"`

	// 品牌、分类可选，被删除时置空
	BrandID    *int64    `gorm:"index"`
	Brand      *Brand    `gorm:"constraint:OnDelete:SET NULL"`
	CategoryID *int64    `gorm:"index"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeDelete 删除商品时级联删除订单明细和购物车
func (p *Product) BeforeDelete(tx *gorm.DB) error {
	if err := tx.Where("product_id = ?", p.ID).Delete(&OrderDetail{}).Error; err != nil {
		return err
	}
	return tx.Where("product_id = ?", p.ID).Delete(&Cart{}).Error
}
