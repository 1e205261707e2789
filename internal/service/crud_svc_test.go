package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
	"priceoye_shop_v1/pkg/database"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

// ==================== 测试辅助 ====================

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

func ptr[T any](v T) *T {
	return &v
}

func money(s string) *decimal.Decimal {
	return ptr(decimal.RequireFromString(s))
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, field, fe.Error())
}

func createUser(t *testing.T, db *gorm.DB, username string) dto.UserResponse {
	t.Helper()
	u, err := NewUserService(repository.NewUserRepository(db)).Create(context.Background(), &dto.UserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	return u
}

// ==================== 通用增删改查 ====================

func TestCrudService_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CategoryRequest{Name: "Power Banks"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	replaced, err := svc.Replace(ctx, created.ID, &dto.CategoryRequest{Name: "Chargers"})
	require.NoError(t, err)
	assert.Equal(t, "Chargers", replaced.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)

	_, err = svc.Replace(ctx, 404, &dto.CategoryRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCrudService_UniqueName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBrandService(db)
	ctx := context.Background()

	a, err := svc.Create(ctx, &dto.BrandRequest{Name: "Anker"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &dto.BrandRequest{Name: "Anker"})
	requireFieldError(t, err, "name")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "校验失败不写入")

	// 替换为自身的名字不算冲突
	_, err = svc.Replace(ctx, a.ID, &dto.BrandRequest{Name: "Anker"})
	assert.NoError(t, err)
}

func TestProductService_References(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	brand, err := NewBrandService(db).Create(ctx, &dto.BrandRequest{Name: "Anker"})
	require.NoError(t, err)
	category, err := NewCategoryService(db).Create(ctx, &dto.CategoryRequest{Name: "Power Banks"})
	require.NoError(t, err)

	svc := NewProductService(db)

	_, err = svc.Create(ctx, &dto.ProductRequest{
		Name: "PB", Description: "d", Price: money("1.00"), StockQuantity: ptr(1), Brand: ptr(int64(99)),
	})
	requireFieldError(t, err, "brand")

	p, err := svc.Create(ctx, &dto.ProductRequest{
		Name: "PowerCore 10000", Description: "10000mAh", Price: money("19.9"), StockQuantity: ptr(0),
		Brand: &brand.ID, Category: &category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "19.90", p.Price)
	assert.Equal(t, brand.ID, *p.Brand)
	assert.Equal(t, category.ID, *p.Category)

	// 整体替换时缺省的可选字段置空
	p, err = svc.Replace(ctx, p.ID, &dto.ProductRequest{
		Name: "PowerCore 10000", Description: "10000mAh", Price: money("18.00"), StockQuantity: ptr(3),
	})
	require.NoError(t, err)
	assert.Nil(t, p.Brand)
	assert.Nil(t, p.Category)

	p, err = svc.Replace(ctx, p.ID, &dto.ProductRequest{
		Name: "PowerCore 10000", Description: "10000mAh", Price: money("18.00"), StockQuantity: ptr(3),
		Brand: &brand.ID,
	})
	require.NoError(t, err)

	require.NoError(t, NewBrandService(db).Delete(ctx, brand.ID))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Brand, "品牌删除后商品的 brand 置空")
}

func TestOrderService_EmbedsDetails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, db, "ali")

	product, err := NewProductService(db).Create(ctx, &dto.ProductRequest{
		Name: "PB", Description: "d", Price: money("10.00"), StockQuantity: ptr(5),
	})
	require.NoError(t, err)

	orders := NewOrderService(db)
	details := NewOrderDetailService(db)

	_, err = orders.Create(ctx, &dto.OrderRequest{User: ptr(int64(42)), TotalAmount: money("1")})
	requireFieldError(t, err, "user")

	o, err := orders.Create(ctx, &dto.OrderRequest{User: &u.ID, TotalAmount: money("99.99")})
	require.NoError(t, err)
	assert.NotNil(t, o.OrderDetails)
	assert.Empty(t, o.OrderDetails)
	assert.False(t, o.OrderDate.IsZero())

	_, err = details.Create(ctx, &dto.OrderDetailRequest{Order: &o.ID, Product: &product.ID, Quantity: ptr(2), Subtotal: money("20.00")})
	require.NoError(t, err)

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.OrderDetails, 1)
	assert.Equal(t, "20.00", got.OrderDetails[0].Subtotal)
	assert.Equal(t, "99.99", got.TotalAmount, "总额不与明细核对")

	replaced, err := orders.Replace(ctx, o.ID, &dto.OrderRequest{User: &u.ID, TotalAmount: money("20")})
	require.NoError(t, err)
	assert.Equal(t, "20.00", replaced.TotalAmount)
	assert.True(t, replaced.OrderDate.Equal(got.OrderDate), "下单时间不被替换")
	assert.Len(t, replaced.OrderDetails, 1)

	require.NoError(t, orders.Delete(ctx, o.ID))
	list, err := details.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "删除订单级联删除明细")
}

func TestPaymentAndInvoiceService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, db, "ali")

	order, err := NewOrderService(db).Create(ctx, &dto.OrderRequest{User: &u.ID, TotalAmount: money("5")})
	require.NoError(t, err)

	payments := NewPaymentService(db)
	pay, err := payments.Create(ctx, &dto.PaymentRequest{User: &u.ID, Amount: money("5")})
	require.NoError(t, err)
	assert.False(t, pay.Success, "success 缺省为 false")
	assert.False(t, pay.Timestamp.IsZero())

	invoices := NewInvoiceService(db)
	_, err = invoices.Create(ctx, &dto.InvoiceRequest{Order: &order.ID, Amount: money("5"), Payment: ptr(int64(77))})
	requireFieldError(t, err, "payment")

	inv, err := invoices.Create(ctx, &dto.InvoiceRequest{Order: &order.ID, Amount: money("5"), Payment: &pay.ID})
	require.NoError(t, err)
	assert.Equal(t, pay.ID, *inv.Payment)

	require.NoError(t, payments.Delete(ctx, pay.ID))
	inv, err = invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, inv.Payment, "支付删除后发票保留")
}

func TestCartService_UnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, db, "ali")

	_, err := NewCartService(db).Create(ctx, &dto.CartRequest{User: &u.ID, Product: ptr(int64(3)), Quantity: ptr(1)})
	requireFieldError(t, err, "product")
}

// ==================== 用户 ====================

func TestUserService_PasswordHashed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewUserRepository(db)
	svc := NewUserService(repo)

	u := createUser(t, db, "ali")
	createUser(t, db, "sara")

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pass", stored.Password)
	assert.True(t, checkPassword(stored.Password, "secret-pass"))
	assert.True(t, stored.IsActive, "接口创建的用户默认激活")

	_, err = svc.Create(ctx, &dto.UserRequest{Username: "ali", Email: "ALI2@example.com", Password: "x"})
	requireFieldError(t, err, "username")

	_, err = svc.Replace(ctx, u.ID, &dto.UserRequest{Username: "ali", Email: "sara@example.com", Password: "x"})
	requireFieldError(t, err, "email")

	// bcrypt 拒绝超过 72 字节的输入
	_, err = svc.Create(ctx, &dto.UserRequest{Username: "omar", Email: "omar@example.com", Password: strings.Repeat("p", 100)})
	requireFieldError(t, err, "password")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// ==================== 写错误翻译 ====================

func TestTranslateWriteError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"pg 唯一约束", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email", TableName: "users"}, "email"},
		{"pg 外键", &pgconn.PgError{Code: "23503", ConstraintName: "fk_orders_user", TableName: "orders"}, "user"},
		{"pg 外键名无法解析", &pgconn.PgError{Code: "23503", ConstraintName: "custom", TableName: "orders"}, NonFieldErrors},
		{"pg 非空", &pgconn.PgError{Code: "23502", ColumnName: "name"}, "name"},
		{"sqlite 唯一约束", gorm.ErrDuplicatedKey, NonFieldErrors},
		{"sqlite 外键", gorm.ErrForeignKeyViolated, NonFieldErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireFieldError(t, translateWriteError(tt.err), tt.field)
		})
	}

	other := &pgconn.PgError{Code: "40001"}
	assert.Same(t, other, translateWriteError(other))
	assert.NoError(t, translateWriteError(nil))
}

func TestFieldErrors(t *testing.T) {
	errs := FieldErrors{}
	assert.NoError(t, errs.OrNil())

	errs.Add("name", "first")
	errs.Add("name", "second")
	errs.Add("brand", "bad")
	assert.Equal(t, "first", errs["name"])
	assert.Equal(t, "参数校验失败: brand: bad; name: first", errs.Error())
}
