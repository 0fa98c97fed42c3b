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

type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewSupplierService(
	supplierRepo *repository.SupplierRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *SupplierService) Create(ctx context.Context, req *domain.CreateSupplierRequest) (*domain.SupplierDTO, error) {
	country := req.Country
	if country == "" {
		country = "China"
	}

	supplier := &domain.Supplier{
		Name:          req.Name,
		Country:       country,
		City:          req.City,
		Email:         req.Email,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
		Website:       req.Website,
		LeadTimeDays:  req.LeadTimeDays,
		Rating:        req.Rating,
		IsActive:      true,
		Notes:         req.Notes,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.logActivity(ctx, supplier.ID, "Supplier created",
		fmt.Sprintf("Supplier '%s' was created", supplier.Name))

	dto := mapper.ToSupplierDTO(supplier)
	return &dto, nil
}

func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SupplierDTO, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	dto := mapper.ToSupplierDTO(supplier)
	return &dto, nil
}

func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSupplierRequest) (*domain.SupplierDTO, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.Country != nil {
		supplier.Country = *req.Country
	}
	if req.City != nil {
		supplier.City = *req.City
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = *req.ContactPerson
	}
	if req.Website != nil {
		supplier.Website = *req.Website
	}
	if req.LeadTimeDays != nil {
		supplier.LeadTimeDays = *req.LeadTimeDays
	}
	if req.Rating != nil {
		supplier.Rating = *req.Rating
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}

	s.logActivity(ctx, supplier.ID, "Supplier updated",
		fmt.Sprintf("Supplier '%s' was updated", supplier.Name))

	dto := mapper.ToSupplierDTO(supplier)
	return &dto, nil
}

func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupplierNotFound
		}
		return fmt.Errorf("failed to get supplier: %w", err)
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.logActivity(ctx, id, "Supplier deleted",
		fmt.Sprintf("Supplier '%s' was deleted", supplier.Name))
	return nil
}

func (s *SupplierService) List(ctx context.Context, page, pageSize int, filters *repository.SupplierFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	suppliers, total, err := s.supplierRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	dtos := make([]domain.SupplierDTO, len(suppliers))
	for i := range suppliers {
		dtos[i] = mapper.ToSupplierDTO(&suppliers[i])
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

func (s *SupplierService) logActivity(ctx context.Context, supplierID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetSupplier,
		TargetID:    supplierID,
		Title:       title,
		Body:        body,
		OccurredAt:  time.Now().UTC(),
		CreatorID:   auth.ActorID(ctx),
		CreatorName: auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.String("supplier_id", supplierID.String()), zap.Error(err))
	}
}
