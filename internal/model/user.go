package model

import (
	"time"

	"gorm.io/gorm"
)

// User 商城用户，登录标识为 Email
type User struct {
	BaseModel
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Email     string `gorm:"size:254;uniqueIndex;not null"`
	FirstName string `gorm:"size:150;not null"`
	LastName  string `gorm:"size:150;not null"`
	Password  string `gorm:"size:128;not null"` // bcrypt 哈希

	// 注意不能加 default:true，gorm 会把 false 当零值替换成默认值
	IsActive  bool `gorm:"not null"`
	LastLogin *time.Time
}

func (User) TableName() string {
	return "users"
}

// BeforeDelete 删除用户时级联删除订单、购物车、支付记录和登录令牌
// 订单和支付逐条删除，让它们自己的级联逻辑生效
func (u *User) BeforeDelete(tx *gorm.DB) error {
	var orders []Order
	if err := tx.Where("user_id = ?", u.ID).Find(&orders).Error; err != nil {
		return err
	}
	for i := range orders {
		if err := tx.Delete(&orders[i]).Error; err != nil {
			return err
		}
	}

	var payments []Payment
	if err := tx.Where("user_id = ?", u.ID).Find(&payments).Error; err != nil {
		return err
	}
	for i := range payments {
		if err := tx.Delete(&payments[i]).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", u.ID).Delete(&Cart{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", u.ID).Delete(&AuthToken{}).Error
}
