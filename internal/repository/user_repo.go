package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"priceoye_shop_v1/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库，在通用增删改查之外提供登录相关查询
type UserRepository interface {
	CrudRepository[model.User]
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Activate(ctx context.Context, id int64) error
	// ListInactiveJoinedBefore 注册早于 before 且从未激活的账号
	ListInactiveJoinedBefore(ctx context.Context, before time.Time) ([]model.User, error)
}

// ==================== 实现 ====================

type userRepository struct {
	CrudRepository[model.User]
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		CrudRepository: NewCrudRepository[model.User](db),
		db:             db,
	}
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword 更新密码哈希
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password", hashedPassword).Error
}

// UpdateLastLogin 更新最后登录时间
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("last_login", at).Error
}

// Activate 激活账号
func (r *userRepository) Activate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("is_active", true).Error
}

// ListInactiveJoinedBefore 未激活且从未登录过的老账号
func (r *userRepository) ListInactiveJoinedBefore(ctx context.Context, before time.Time) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND last_login IS NULL AND created_at < ?", false, before).
		Order("id ASC").
		Find(&users).Error
	return users, err
}
