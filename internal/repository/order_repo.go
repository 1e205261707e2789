package repository

import (
	"gorm.io/gorm"

	"priceoye_shop_v1/internal/model"
)

// NewOrderRepository 订单读取时带出明细，明细按 ID 升序
func NewOrderRepository(db *gorm.DB) CrudRepository[model.Order] {
	return NewCrudRepository[model.Order](db, func(db *gorm.DB) *gorm.DB {
		return db.Preload("OrderDetails", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	})
}
