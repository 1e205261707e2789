package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== CrudRepository 通用仓库 ====================

// CrudRepository 单表增删改查
// GetByID 找不到时返回 (nil, nil)
type CrudRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, entity *T) error
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// ExistsBy 字段值是否已被其他记录占用，excludeID 为 0 时不排除
	ExistsBy(ctx context.Context, column string, value interface{}, excludeID int64) (bool, error)
}

// Scope 读取时附加的查询条件，比如预加载
type Scope func(db *gorm.DB) *gorm.DB

// ==================== 实现 ====================

type crudRepository[T any] struct {
	db     *gorm.DB
	scopes []func(*gorm.DB) *gorm.DB
}

// NewCrudRepository 创建通用仓库
func NewCrudRepository[T any](db *gorm.DB, scopes ...Scope) CrudRepository[T] {
	r := &crudRepository[T]{db: db}
	for _, s := range scopes {
		r.scopes = append(r.scopes, s)
	}
	return r
}

func (r *crudRepository[T]) read(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(r.scopes...)
}

// List 按 ID 升序返回全部记录
func (r *crudRepository[T]) List(ctx context.Context) ([]T, error) {
	list := make([]T, 0)
	if err := r.read(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *crudRepository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	err := r.read(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Create 只写本表，关联对象由各自的接口维护
func (r *crudRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error
}

func (r *crudRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(entity).Error
}

// Delete 传入已加载的记录，BeforeDelete 钩子负责级联
func (r *crudRepository[T]) Delete(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Delete(entity).Error
}

func (r *crudRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

func (r *crudRepository[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *crudRepository[T]) ExistsBy(ctx context.Context, column string, value interface{}, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(new(T)).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
