package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment 支付记录，Timestamp 创建时自动写入
type Payment struct {
	BaseModel
	UserID    int64           `gorm:"index;not null"`
	User      *User           `gorm:"constraint:OnDelete:CASCADE"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Timestamp time.Time       `gorm:"autoCreateTime"`
	Success   bool            `gorm:"not null"`
}

func (Payment) TableName() string {
	return "payments"
}

// BeforeDelete 删除支付记录时发票保留，只清空引用
func (p *Payment) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Invoice{}).Where("payment_id = ?", p.ID).Update("payment_id", nil).Error
}

// Invoice 发票，可以不关联支付
type Invoice struct {
	BaseModel
	OrderID   int64           `gorm:"index;not null"`
	Order     *Order          `gorm:"constraint:OnDelete:CASCADE"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaymentID *int64          `gorm:"index"`
	Payment   *Payment        `gorm:"constraint:OnDelete:SET NULL"`
}

func (Invoice) TableName() string {
	return "invoices"
}
