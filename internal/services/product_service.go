// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/construmax/construmax-backend/internal/models"
	"github.com/construmax/construmax-backend/internal/pricing"
	"github.com/construmax/construmax-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required,min=2,max=255"`
	Description   string     `json:"description,omitempty"`
	SKU           string     `json:"sku,omitempty" validate:"omitempty,max=100"`
	Brand         string     `json:"brand,omitempty" validate:"omitempty,max=100"`
	Category      string     `json:"category,omitempty" validate:"omitempty,max=100"`
	Unit          string     `json:"unit,omitempty" validate:"omitempty,max=50"`
	ProductType   string     `json:"product_type" validate:"required,product_type"`
	Price         float64    `json:"price,omitempty" validate:"omitempty,min=0"`
	WeightPerUnit float64    `json:"weight_per_unit,omitempty" validate:"omitempty,gt=0"`
	KgPerMeter    float64    `json:"kg_per_meter,omitempty" validate:"omitempty,gt=0"`
	PricePerKg    float64    `json:"price_per_kg,omitempty" validate:"omitempty,gt=0"`
	StockType     string     `json:"stock_type,omitempty" validate:"omitempty,stock_type"`
	Stock         int        `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsAvailable   *bool      `json:"is_available,omitempty"`
	Thickness     string     `json:"thickness,omitempty" validate:"omitempty,max=50"`
	Size          string     `json:"size,omitempty" validate:"omitempty,max=50"`
	PriceGroupID  *uuid.UUID `json:"price_group_id,omitempty"`
	Featured      bool       `json:"featured"`
	PrimaryImage  string     `json:"primary_image,omitempty" validate:"omitempty,max=512"`
	Tags          []string   `json:"tags,omitempty"`
}

type UpdateProductRequest struct {
	Name          string     `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description   *string    `json:"description,omitempty"`
	SKU           string     `json:"sku,omitempty" validate:"omitempty,max=100"`
	Brand         string     `json:"brand,omitempty" validate:"omitempty,max=100"`
	Category      string     `json:"category,omitempty" validate:"omitempty,max=100"`
	Unit          string     `json:"unit,omitempty" validate:"omitempty,max=50"`
	Price         *float64   `json:"price,omitempty" validate:"omitempty,min=0"`
	WeightPerUnit *float64   `json:"weight_per_unit,omitempty" validate:"omitempty,gt=0"`
	KgPerMeter    *float64   `json:"kg_per_meter,omitempty" validate:"omitempty,gt=0"`
	PricePerKg    *float64   `json:"price_per_kg,omitempty" validate:"omitempty,gt=0"`
	StockType     string     `json:"stock_type,omitempty" validate:"omitempty,stock_type"`
	Stock         *int       `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsAvailable   *bool      `json:"is_available,omitempty"`
	Thickness     *string    `json:"thickness,omitempty"`
	Size          *string    `json:"size,omitempty"`
	PriceGroupID  *uuid.UUID `json:"price_group_id,omitempty"`
	Featured      *bool      `json:"featured,omitempty"`
	PrimaryImage  string     `json:"primary_image,omitempty" validate:"omitempty,max=512"`
	Tags          []string   `json:"tags,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	ProductType  *models.ProductType `json:"product_type,omitempty"`
	PriceGroupID *uuid.UUID          `json:"price_group_id,omitempty"`
	Featured     *bool               `json:"featured,omitempty"`
	InStock      *bool               `json:"in_stock,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		Brand:         req.Brand,
		Category:      req.Category,
		Unit:          req.Unit,
		ProductType:   models.ProductType(req.ProductType),
		Price:         req.Price,
		WeightPerUnit: req.WeightPerUnit,
		KgPerMeter:    req.KgPerMeter,
		PricePerKg:    req.PricePerKg,
		StockType:     models.StockType(req.StockType),
		Stock:         req.Stock,
		IsAvailable:   true,
		Thickness:     req.Thickness,
		Size:          req.Size,
		PriceGroupID:  req.PriceGroupID,
		Featured:      req.Featured,
		PrimaryImage:  req.PrimaryImage,
		Tags:          pq.StringArray(req.Tags),
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}
	if product.StockType == "" {
		product.StockType = models.StockTypeQuantity
	}

	if err := s.normalizeDerived(product); err != nil {
		return nil, err
	}

	if req.PriceGroupID != nil {
		if err := s.applyGroupRate(product); err != nil {
			return nil, err
		}
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// normalizeDerived enforces the derived-type invariants: availability
// stock tracking and a price derived from factor x rate when both are
// known. Incomplete pricing data is allowed at rest; the storefront shows
// "consultar precio" for it.
func (s *ProductService) normalizeDerived(p *models.Product) error {
	if !p.IsDerived() {
		return nil
	}

	p.StockType = models.StockTypeAvailability
	p.Stock = 0

	if price, err := pricing.ComputeUnitPrice(p); err == nil {
		p.Price = price
	} else if p.Price != 0 {
		return fmt.Errorf("derived product price must come from its per-kg rate: %w", err)
	}
	return nil
}

// applyGroupRate pulls the member product's per-kg rate from its group's
// active price and re-derives the stored price when possible.
func (s *ProductService) applyGroupRate(p *models.Product) error {
	if p.PriceGroupID == nil || !p.IsDerived() {
		return nil
	}

	var groupPrice models.PriceGroupPrice
	err := s.db.Where("price_group_id = ? AND is_active = ?", *p.PriceGroupID, true).
		Order("created_at ASC").First(&groupPrice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // group has no active price; leave as-is
		}
		return fmt.Errorf("database error: %w", err)
	}

	p.PricePerKg = groupPrice.PricePerKg
	if price, err := pricing.ComputeUnitPrice(p); err == nil {
		p.Price = price
	}
	return nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("PriceGroup").Preload("PriceGroup.Prices").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.position ASC")
		}).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) GetProductImages(id uuid.UUID) ([]models.ProductImage, error) {
	if _, err := s.GetProduct(id); err != nil {
		return nil, err
	}

	var images []models.ProductImage
	if err := s.db.Where("product_id = ?", id).
		Order("position ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}
	return images, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.SKU != "" {
		updates["sku"] = req.SKU
	}
	if req.Brand != "" {
		updates["brand"] = req.Brand
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.Price != nil && !product.IsDerived() {
		updates["price"] = *req.Price
	}
	if req.WeightPerUnit != nil {
		updates["weight_per_unit"] = *req.WeightPerUnit
		product.WeightPerUnit = *req.WeightPerUnit
	}
	if req.KgPerMeter != nil {
		updates["kg_per_meter"] = *req.KgPerMeter
		product.KgPerMeter = *req.KgPerMeter
	}
	if req.PricePerKg != nil {
		updates["price_per_kg"] = *req.PricePerKg
		product.PricePerKg = *req.PricePerKg
	}
	if req.StockType != "" && !product.IsDerived() {
		updates["stock_type"] = req.StockType
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.Thickness != nil {
		updates["thickness"] = *req.Thickness
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if req.PriceGroupID != nil {
		updates["price_group_id"] = *req.PriceGroupID
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if req.PrimaryImage != "" {
		updates["primary_image"] = req.PrimaryImage
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}

	// Re-derive the stored price when any pricing input changed.
	if product.IsDerived() && (req.WeightPerUnit != nil || req.KgPerMeter != nil || req.PricePerKg != nil) {
		if price, err := pricing.ComputeUnitPrice(&product); err == nil {
			updates["price"] = price
		}
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProduct(id)
}

func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Soft delete; order items keep their product reference for history.
	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("PriceGroup")

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.ProductType != nil {
		query = query.Where("product_type = ?", *params.ProductType)
	}

	if params.PriceGroupID != nil {
		query = query.Where("price_group_id = ?", *params.PriceGroupID)
	}

	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	if params.InStock != nil && *params.InStock {
		query = query.Where("(stock_type = ? AND stock > 0) OR (stock_type = ? AND is_available)",
			models.StockTypeQuantity, models.StockTypeAvailability)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "category"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetFeaturedProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}
	return products, nil
}

// AddImage records an uploaded image; the first image of a product becomes
// primary automatically.
func (s *ProductService) AddImage(productID uuid.UUID, url, key, alt string) (*models.ProductImage, error) {
	product, err := s.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&count)

	image := &models.ProductImage{
		ProductID: productID,
		URL:       url,
		Key:       key,
		Alt:       alt,
		Position:  int(count),
		IsPrimary: count == 0,
	}

	if err := s.db.Create(image).Error; err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	if image.IsPrimary && product.PrimaryImage == "" {
		s.db.Model(product).Update("primary_image", url)
	}

	return image, nil
}

func (s *ProductService) DeleteImage(productID, imageID uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := s.db.Where("id = ? AND product_id = ?", imageID, productID).
		First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("image not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Delete(&image).Error; err != nil {
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}

	return &image, nil
}
