package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/mapper"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductService struct {
	productRepo  *repository.ProductRepository
	supplierRepo *repository.SupplierRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewProductService(
	productRepo *repository.ProductRepository,
	supplierRepo *repository.SupplierRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	if req.SKU != "" {
		existing, err := s.productRepo.GetBySKU(ctx, req.SKU)
		if err != nil {
			return nil, fmt.Errorf("failed to check sku: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicateSKU
		}
	}

	if req.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *req.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSupplierNotFound
			}
			return nil, fmt.Errorf("failed to verify supplier: %w", err)
		}
	}

	uom := req.UnitOfMeasure
	if uom == "" {
		uom = "unit"
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	product := &domain.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		SupplierID:    req.SupplierID,
		HSCode:        req.HSCode,
		HSDutyPercent: req.HSDutyPercent,
		UnitOfMeasure: uom,
		UnitCost:      req.UnitCost,
		UnitPrice:     req.UnitPrice,
		Currency:      currency,
		IsActive:      true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logActivity(ctx, product.ID, "Product created",
		fmt.Sprintf("Product '%s' was created", product.Name))

	// Reload to include the supplier relation
	product, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.SKU != nil && *req.SKU != product.SKU && *req.SKU != "" {
		existing, err := s.productRepo.GetBySKU(ctx, *req.SKU)
		if err != nil {
			return nil, fmt.Errorf("failed to check sku: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrDuplicateSKU
		}
		product.SKU = *req.SKU
	}

	if req.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *req.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSupplierNotFound
			}
			return nil, fmt.Errorf("failed to verify supplier: %w", err)
		}
		product.SupplierID = req.SupplierID
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.HSCode != nil {
		product.HSCode = *req.HSCode
	}
	if req.HSDutyPercent != nil {
		product.HSDutyPercent = *req.HSDutyPercent
	}
	if req.UnitOfMeasure != nil {
		product.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.UnitCost != nil {
		product.UnitCost = *req.UnitCost
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.Currency != nil {
		product.Currency = *req.Currency
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logActivity(ctx, product.ID, "Product updated",
		fmt.Sprintf("Product '%s' was updated", product.Name))

	product, err = s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

// Delete removes a product from the catalog. Existing quotation items
// keep their snapshots, so history is unaffected.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logActivity(ctx, id, "Product deleted",
		fmt.Sprintf("Product '%s' was deleted", product.Name))
	return nil
}

func (s *ProductService) List(ctx context.Context, page, pageSize int, filters *repository.ProductFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	products, total, err := s.productRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}

	if pageSize < 1 {
		pageSize = 20
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *ProductService) logActivity(ctx context.Context, productID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetProduct,
		TargetID:    productID,
		Title:       title,
		Body:        body,
		OccurredAt:  time.Now().UTC(),
		CreatorID:   auth.ActorID(ctx),
		CreatorName: auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.String("product_id", productID.String()), zap.Error(err))
	}
}
