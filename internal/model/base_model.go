package model

import (
	"time"
)

// BaseModel 所有实体共用的主键和时间戳
// 物理删除，不带 DeletedAt：唯一字段删除后需要能被重新使用
type BaseModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllModels 需要自动建表的实体，按依赖顺序排列
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &AuthToken{},
		&Brand{}, &Category{}, &Product{},
		&Order{}, &OrderDetail{}, &Cart{},
		&Payment{}, &Invoice{},
	}
}
