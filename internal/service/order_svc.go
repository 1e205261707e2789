package service

import (
	"context"

	"gorm.io/gorm"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
)

// ==================== 订单 ====================

// OrderService 订单增删改查
type OrderService = CrudService[model.Order, dto.OrderRequest, dto.OrderResponse]

type orderSchema struct {
	users repository.CrudRepository[model.User]
}

// NewOrderService 创建订单服务
// total_amount 原样保存，不与明细小计核对
func NewOrderService(db *gorm.DB) *OrderService {
	return NewCrudService[model.Order, dto.OrderRequest, dto.OrderResponse](
		repository.NewOrderRepository(db),
		orderSchema{users: repository.NewCrudRepository[model.User](db)},
	)
}

func (s orderSchema) Validate(ctx context.Context, _ int64, req *dto.OrderRequest) error {
	errs := FieldErrors{}
	if err := checkRef(ctx, errs, s.users, "user", req.User); err != nil {
		return err
	}
	return errs.OrNil()
}

func (orderSchema) Apply(req *dto.OrderRequest, m *model.Order) error {
	m.UserID = *req.User
	m.TotalAmount = *req.TotalAmount
	return nil
}

func (orderSchema) Render(m *model.Order) dto.OrderResponse {
	details := make([]dto.OrderDetailResponse, 0, len(m.OrderDetails))
	for i := range m.OrderDetails {
		details = append(details, renderOrderDetail(&m.OrderDetails[i]))
	}
	return dto.OrderResponse{
		ID:           m.ID,
		User:         m.UserID,
		OrderDate:    m.OrderDate,
		TotalAmount:  dto.Money(m.TotalAmount),
		OrderDetails: details,
	}
}

// ==================== 订单明细 ====================

// OrderDetailService 订单明细增删改查
type OrderDetailService = CrudService[model.OrderDetail, dto.OrderDetailRequest, dto.OrderDetailResponse]

type orderDetailSchema struct {
	orders   repository.CrudRepository[model.Order]
	products repository.CrudRepository[model.Product]
}

// NewOrderDetailService 创建订单明细服务
func NewOrderDetailService(db *gorm.DB) *OrderDetailService {
	return NewCrudService[model.OrderDetail, dto.OrderDetailRequest, dto.OrderDetailResponse](
		repository.NewCrudRepository[model.OrderDetail](db),
		orderDetailSchema{
			orders:   repository.NewCrudRepository[model.Order](db),
			products: repository.NewCrudRepository[model.Product](db),
		},
	)
}

func (s orderDetailSchema) Validate(ctx context.Context, _ int64, req *dto.OrderDetailRequest) error {
	errs := FieldErrors{}
	if err := checkRef(ctx, errs, s.orders, "order", req.Order); err != nil {
		return err
	}
	if err := checkRef(ctx, errs, s.products, "product", req.Product); err != nil {
		return err
	}
	return errs.OrNil()
}

func (orderDetailSchema) Apply(req *dto.OrderDetailRequest, m *model.OrderDetail) error {
	m.OrderID = *req.Order
	m.ProductID = *req.Product
	m.Quantity = *req.Quantity
	m.Subtotal = *req.Subtotal
	return nil
}

func (orderDetailSchema) Render(m *model.OrderDetail) dto.OrderDetailResponse {
	return renderOrderDetail(m)
}

func renderOrderDetail(m *model.OrderDetail) dto.OrderDetailResponse {
	return dto.OrderDetailResponse{
		ID:       m.ID,
		Order:    m.OrderID,
		Product:  m.ProductID,
		Quantity: m.Quantity,
		Subtotal: dto.Money(m.Subtotal),
	}
}

// ==================== 购物车 ====================

// CartService 购物车增删改查
type CartService = CrudService[model.Cart, dto.CartRequest, dto.CartResponse]

type cartSchema struct {
	users    repository.CrudRepository[model.User]
	products repository.CrudRepository[model.Product]
}

// NewCartService 创建购物车服务
func NewCartService(db *gorm.DB) *CartService {
	return NewCrudService[model.Cart, dto.CartRequest, dto.CartResponse](
		repository.NewCrudRepository[model.Cart](db),
		cartSchema{
			users:    repository.NewCrudRepository[model.User](db),
			products: repository.NewCrudRepository[model.Product](db),
		},
	)
}

func (s cartSchema) Validate(ctx context.Context, _ int64, req *dto.CartRequest) error {
	errs := FieldErrors{}
	if err := checkRef(ctx, errs, s.users, "user", req.User); err != nil {
		return err
	}
	if err := checkRef(ctx, errs, s.products, "product", req.Product); err != nil {
		return err
	}
	return errs.OrNil()
}

func (cartSchema) Apply(req *dto.CartRequest, m *model.Cart) error {
	m.UserID = *req.User
	m.ProductID = *req.Product
	m.Quantity = *req.Quantity
	return nil
}

func (cartSchema) Render(m *model.Cart) dto.CartResponse {
	return dto.CartResponse{
		ID:       m.ID,
		User:     m.UserID,
		Product:  m.ProductID,
		Quantity: m.Quantity,
	}
}
