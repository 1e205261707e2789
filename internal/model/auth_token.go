package model

import (
	"time"
)

// AuthToken 不透明登录令牌，每个用户最多一个
type AuthToken struct {
	Key       string `gorm:"primaryKey;size:40"`
	UserID    int64  `gorm:"uniqueIndex;not null"`
	User      *User  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
