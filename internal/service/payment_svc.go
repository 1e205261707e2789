package service

import (
	"context"

	"gorm.io/gorm"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
)

// ==================== 支付 ====================

// PaymentService 支付记录增删改查
type PaymentService = CrudService[model.Payment, dto.PaymentRequest, dto.PaymentResponse]

type paymentSchema struct {
	users repository.CrudRepository[model.User]
}

// NewPaymentService 创建支付服务
func NewPaymentService(db *gorm.DB) *PaymentService {
	return NewCrudService[model.Payment, dto.PaymentRequest, dto.PaymentResponse](
		repository.NewCrudRepository[model.Payment](db),
		paymentSchema{users: repository.NewCrudRepository[model.User](db)},
	)
}

func (s paymentSchema) Validate(ctx context.Context, _ int64, req *dto.PaymentRequest) error {
	errs := FieldErrors{}
	if err := checkRef(ctx, errs, s.users, "user", req.User); err != nil {
		return err
	}
	return errs.OrNil()
}

func (paymentSchema) Apply(req *dto.PaymentRequest, m *model.Payment) error {
	m.UserID = *req.User
	m.Amount = *req.Amount
	m.Success = req.Success != nil && *req.Success
	return nil
}

func (paymentSchema) Render(m *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        m.ID,
		User:      m.UserID,
		Amount:    dto.Money(m.Amount),
		Timestamp: m.Timestamp,
		Success:   m.Success,
	}
}

// ==================== 发票 ====================

// InvoiceService 发票增删改查
type InvoiceService = CrudService[model.Invoice, dto.InvoiceRequest, dto.InvoiceResponse]

type invoiceSchema struct {
	orders   repository.CrudRepository[model.Order]
	payments repository.CrudRepository[model.Payment]
}

// NewInvoiceService 创建发票服务
func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return NewCrudService[model.Invoice, dto.InvoiceRequest, dto.InvoiceResponse](
		repository.NewCrudRepository[model.Invoice](db),
		invoiceSchema{
			orders:   repository.NewCrudRepository[model.Order](db),
			payments: repository.NewCrudRepository[model.Payment](db),
		},
	)
}

func (s invoiceSchema) Validate(ctx context.Context, _ int64, req *dto.InvoiceRequest) error {
	errs := FieldErrors{}
	if err := checkRef(ctx, errs, s.orders, "order", req.Order); err != nil {
		return err
	}
	if err := checkRef(ctx, errs, s.payments, "payment", req.Payment); err != nil {
		return err
	}
	return errs.OrNil()
}

func (invoiceSchema) Apply(req *dto.InvoiceRequest, m *model.Invoice) error {
	m.OrderID = *req.Order
	m.Amount = *req.Amount
	m.PaymentID = req.Payment
	return nil
}

func (invoiceSchema) Render(m *model.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:      m.ID,
		Order:   m.OrderID,
		Amount:  dto.Money(m.Amount),
		Payment: m.PaymentID,
	}
}
