package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/pkg/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver: "sqlite",
		DSN:    "file::memory:",
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, database.Migrate(db, model.AllModels()...), "数据库迁移失败")
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func mustCreate[T any](t *testing.T, repo CrudRepository[T], entity *T) *T {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), entity))
	return entity
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCrudRepo_ListOrderedByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCrudRepository[model.Brand](db)
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list, "空表返回空切片而不是 nil")
	assert.Empty(t, list)

	for _, name := range []string{"Xiaomi", "Anker", "Samsung"} {
		mustCreate(t, repo, &model.Brand{Name: name})
	}

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Xiaomi", list[0].Name)
	assert.Less(t, list[0].ID, list[1].ID)
	assert.Less(t, list[1].ID, list[2].ID)
}

func TestCrudRepo_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCrudRepository[model.Category](db)
	ctx := context.Background()

	c := mustCreate(t, repo, &model.Category{Name: "Power Banks"})
	assert.Equal(t, int64(1), c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Power Banks", got.Name)

	missing, err := repo.GetByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCrudRepo_UpdateAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCrudRepository[model.Brand](db)
	ctx := context.Background()

	a := mustCreate(t, repo, &model.Brand{Name: "Anker"})
	mustCreate(t, repo, &model.Brand{Name: "Baseus"})

	a.Name = "Anker Innovations"
	require.NoError(t, repo.Update(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anker Innovations", got.Name)

	ok, err := repo.Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ExistsBy(ctx, "name", "Baseus", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsBy(ctx, "name", "Anker Innovations", a.ID)
	require.NoError(t, err)
	assert.False(t, ok, "排除自身后不算重复")
}

func TestCrudRepo_UniqueViolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCrudRepository[model.Brand](db)

	mustCreate(t, repo, &model.Brand{Name: "Anker"})
	err := repo.Create(context.Background(), &model.Brand{Name: "Anker"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOrderRepo_PreloadsDetails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	products := NewCrudRepository[model.Product](db)
	orders := NewOrderRepository(db)
	details := NewCrudRepository[model.OrderDetail](db)

	u := mustCreate[model.User](t, users, &model.User{Username: "ali", Email: "ali@example.com", Password: "x", IsActive: true})
	p := mustCreate(t, products, &model.Product{Name: "PB 10000", Description: "-", Price: money("19.99"), StockQuantity: 5})
	o := mustCreate(t, orders, &model.Order{UserID: u.ID, TotalAmount: money("39.98")})
	assert.False(t, o.OrderDate.IsZero(), "下单时间自动写入")

	mustCreate(t, details, &model.OrderDetail{OrderID: o.ID, ProductID: p.ID, Quantity: 1, Subtotal: money("19.99")})
	mustCreate(t, details, &model.OrderDetail{OrderID: o.ID, ProductID: p.ID, Quantity: 1, Subtotal: money("19.99")})

	got, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.OrderDetails, 2)
	assert.Less(t, got.OrderDetails[0].ID, got.OrderDetails[1].ID)
	assert.True(t, got.TotalAmount.Equal(money("39.98")))
}

func TestCrudRepo_ForeignKeyEnforced(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCrudRepository[model.Cart](db)

	err := carts.Create(context.Background(), &model.Cart{UserID: 7, ProductID: 9, Quantity: 1})
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}
