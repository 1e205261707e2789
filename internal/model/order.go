package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== 订单 ====================

// Order 订单，OrderDate 创建时自动写入
type Order struct {
	BaseModel
	UserID      int64           `gorm:"index;not null"`
	User        *User           `gorm:"constraint:OnDelete:CASCADE"`
	OrderDate   time.Time       `gorm:"autoCreateTime"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// BeforeDelete 删除订单时级联删除明细和发票
func (o *Order) BeforeDelete(tx *gorm.DB) error {
	if err := tx.Where("order_id = ?", o.ID).Delete(&OrderDetail{}).Error; err != nil {
		return err
	}
	return tx.Where("order_id = ?", o.ID).Delete(&Invoice{}).Error
}

// OrderDetail 订单明细，Subtotal 由调用方给出，不做计算校验
type OrderDetail struct {
	BaseModel
	OrderID   int64           `gorm:"index;not null"`
	ProductID int64           `gorm:"index;not null"`
	Product   *Product        `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int             `gorm:"not null;check:chk_order_details_quantity,quantity >= 1"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (OrderDetail) TableName() string {
	return "order_details"
}

// ==================== 购物车 ====================

// Cart 购物车条目，同一用户同一商品允许多条
type Cart struct {
	BaseModel
	UserID    int64    `gorm:"index;not null"`
	User      *User    `gorm:"constraint:OnDelete:CASCADE"`
	ProductID int64    `gorm:"index;not null"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `gorm:"not null;check:chk_carts_quantity,quantity >= 1"`
}

func (Cart) TableName() string {
	return "carts"
}
