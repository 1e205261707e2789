package service

import (
	"context"

	"gorm.io/gorm"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
)

// ==================== 品牌 ====================

// BrandService 品牌增删改查
type BrandService = CrudService[model.Brand, dto.BrandRequest, dto.BrandResponse]

type brandSchema struct {
	brands repository.CrudRepository[model.Brand]
}

// NewBrandService 创建品牌服务
func NewBrandService(db *gorm.DB) *BrandService {
	repo := repository.NewCrudRepository[model.Brand](db)
	return NewCrudService[model.Brand, dto.BrandRequest, dto.BrandResponse](repo, brandSchema{brands: repo})
}

func (s brandSchema) Validate(ctx context.Context, id int64, req *dto.BrandRequest) error {
	errs := FieldErrors{}
	if err := checkUnique(ctx, errs, s.brands, "name", "name", req.Name, id); err != nil {
		return err
	}
	return errs.OrNil()
}

func (brandSchema) Apply(req *dto.BrandRequest, m *model.Brand) error {
	m.Name = req.Name
	return nil
}

func (brandSchema) Render(m *model.Brand) dto.BrandResponse {
	return dto.BrandResponse{ID: m.ID, Name: m.Name}
}

// ==================== 分类 ====================

// CategoryService 分类增删改查
type CategoryService = CrudService[model.Category, dto.CategoryRequest, dto.CategoryResponse]

type categorySchema struct {
	categories repository.CrudRepository[model.Category]
}

// NewCategoryService 创建分类服务
func NewCategoryService(db *gorm.DB) *CategoryService {
	repo := repository.NewCrudRepository[model.Category](db)
	return NewCrudService[model.Category, dto.CategoryRequest, dto.CategoryResponse](repo, categorySchema{categories: repo})
}

func (s categorySchema) Validate(ctx context.Context, id int64, req *dto.CategoryRequest) error {
	errs := FieldErrors{}
	if err := checkUnique(ctx, errs, s.categories, "name", "name", req.Name, id); err != nil {
		return err
	}
	return errs.OrNil()
}

func (categorySchema) Apply(req *dto.CategoryRequest, m *model.Category) error {
	m.Name = req.Name
	return nil
}

func (categorySchema) Render(m *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: m.ID, Name: m.Name}
}

// ==================== 商品 ====================

// ProductService 商品增删改查
type ProductService = CrudService[model.Product, dto.ProductRequest, dto.ProductResponse]

type productSchema struct {
	brands     repository.CrudRepository[model.Brand]
	categories repository.CrudRepository[model.Category]
}

// NewProductService 创建商品服务
func NewProductService(db *gorm.DB) *ProductService {
	return NewCrudService[model.Product, dto.ProductRequest, dto.ProductResponse](
		repository.NewCrudRepository[model.Product](db),
		productSchema{
			brands:     repository.NewCrudRepository[model.Brand](db),
			categories: repository.NewCrudRepository[model.Category](db),
		},
	)
}

func (s productSchema) Validate(ctx context.Context, _ int64, req *dto.ProductRequest) error {
	errs := FieldErrors{}
	if err := checkRef(ctx, errs, s.brands, "brand", req.Brand); err != nil {
		return err
	}
	if err := checkRef(ctx, errs, s.categories, "category", req.Category); err != nil {
		return err
	}
	return errs.OrNil()
}

func (productSchema) Apply(req *dto.ProductRequest, m *model.Product) error {
	m.Name = req.Name
	m.Description = req.Description
	m.Price = *req.Price
	m.StockQuantity = *req.StockQuantity
	m.BrandID = req.Brand
	m.CategoryID = req.Category
	return nil
}

func (productSchema) Render(m *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Price:         dto.Money(m.Price),
		StockQuantity: m.StockQuantity,
		Brand:         m.BrandID,
		Category:      m.CategoryID,
	}
}
