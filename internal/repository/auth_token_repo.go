package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"priceoye_shop_v1/internal/model"
)

// ==================== AuthTokenRepository 登录令牌仓库 ====================

// AuthTokenRepository 不透明登录令牌的存取
type AuthTokenRepository interface {
	// GetOrCreate 返回用户已有的令牌，没有时用 newKey 创建
	GetOrCreate(ctx context.Context, userID int64, newKey string) (*model.AuthToken, error)
	// GetByKey 令牌不存在时返回 nil, nil
	GetByKey(ctx context.Context, key string) (*model.AuthToken, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

type authTokenRepository struct {
	db *gorm.DB
}

// NewAuthTokenRepository 创建登录令牌仓库
func NewAuthTokenRepository(db *gorm.DB) AuthTokenRepository {
	return &authTokenRepository{db: db}
}

func (r *authTokenRepository) GetOrCreate(ctx context.Context, userID int64, newKey string) (*model.AuthToken, error) {
	db := r.db.WithContext(ctx)

	// 并发登录时只有一条能写入，其余读取已存在的那条
	token := &model.AuthToken{Key: newKey, UserID: userID}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(token).Error; err != nil {
		return nil, err
	}

	var stored model.AuthToken
	if err := db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *authTokenRepository) GetByKey(ctx context.Context, key string) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.WithContext(ctx).Where(&model.AuthToken{Key: key}).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *authTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AuthToken{}).Error
}
