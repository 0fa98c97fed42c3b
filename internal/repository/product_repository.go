package repository

import (
	"context"
	"strings"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilters defines filter options for product listing
type ProductFilters struct {
	Search     string
	SupplierID *uuid.UUID
	IsActive   *bool
}

var productSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"sku":       "sku",
	"unitPrice": "unit_price",
	"unitCost":  "unit_cost",
}

// ProductRepository handles product catalog data access operations
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Preload("Supplier").Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySKU finds a product by SKU, returning nil when none exists
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

// List returns a paginated list of products with default sorting
func (r *ProductRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Product, int64, error) {
	filters := &ProductFilters{Search: search}
	return r.ListWithSortConfig(ctx, page, pageSize, filters, DefaultSortConfig())
}

// ListWithSortConfig returns a paginated list of products with filter and sort options
func (r *ProductRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *ProductFilters, sort SortConfig) ([]domain.Product, int64, error) {
	var products []domain.Product
	var total int64

	page, pageSize = normalizePaging(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Product{}).Preload("Supplier")

	if filters != nil {
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", searchPattern, searchPattern)
		}
		if filters.SupplierID != nil {
			query = query.Where("supplier_id = ?", *filters.SupplierID)
		}
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, productSortableFields, "updated_at")
	offset := (page - 1) * pageSize
	err := query.Order(orderClause).Offset(offset).Limit(pageSize).Find(&products).Error

	return products, total, err
}
