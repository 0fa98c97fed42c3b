package repository

import (
	"context"
	"strings"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientFilters defines filter options for client listing
type ClientFilters struct {
	Search  string
	City    string
	Country string
	Status  *domain.ClientStatus
}

// clientSortableFields maps API field names to database column names.
// Only fields in this map can be used for sorting (whitelist approach).
var clientSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"city":      "city",
	"country":   "country",
	"status":    "status",
	"taxId":     "tax_id",
}

// ClientRepository handles client data access operations
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByTaxID finds a client by tax identifier, returning nil when none exists
func (r *ClientRepository) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("tax_id = ?", taxID).First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Client{}, "id = ?", id).Error
}

// List returns a paginated list of clients with default sorting
func (r *ClientRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Client, int64, error) {
	filters := &ClientFilters{Search: search}
	return r.ListWithSortConfig(ctx, page, pageSize, filters, DefaultSortConfig())
}

// ListWithSortConfig returns a paginated list of clients with filter and sort options
func (r *ClientRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *ClientFilters, sort SortConfig) ([]domain.Client, int64, error) {
	var clients []domain.Client
	var total int64

	page, pageSize = normalizePaging(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Client{})

	if filters != nil {
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(tax_id) LIKE ? OR LOWER(email) LIKE ?",
				searchPattern, searchPattern, searchPattern)
		}
		if filters.City != "" {
			query = query.Where("LOWER(city) = LOWER(?)", filters.City)
		}
		if filters.Country != "" {
			query = query.Where("LOWER(country) = LOWER(?)", filters.Country)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, clientSortableFields, "updated_at")
	offset := (page - 1) * pageSize
	err := query.Order(orderClause).Offset(offset).Limit(pageSize).Find(&clients).Error

	return clients, total, err
}
