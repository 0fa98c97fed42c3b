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

type ClientService struct {
	clientRepo    *repository.ClientRepository
	quotationRepo *repository.QuotationRepository
	activityRepo  *repository.ActivityRepository
	logger        *zap.Logger
}

func NewClientService(
	clientRepo *repository.ClientRepository,
	quotationRepo *repository.QuotationRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:    clientRepo,
		quotationRepo: quotationRepo,
		activityRepo:  activityRepo,
		logger:        logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	if req.TaxID != "" {
		existing, err := s.clientRepo.GetByTaxID(ctx, req.TaxID)
		if err != nil {
			return nil, fmt.Errorf("failed to check tax id: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicateTaxID
		}
	}

	incoterm := req.PreferredIncoterm
	if incoterm == "" {
		incoterm = domain.IncotermCIF
	}
	if !incoterm.IsValid() {
		return nil, fmt.Errorf("%w: incoterm %q", ErrInvalidInput, incoterm)
	}
	status := req.Status
	if status == "" {
		status = domain.ClientStatusActive
	}
	country := req.Country
	if country == "" {
		country = "Colombia"
	}

	client := &domain.Client{
		Name:              req.Name,
		TaxID:             req.TaxID,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		City:              req.City,
		Country:           country,
		ContactPerson:     req.ContactPerson,
		ContactEmail:      req.ContactEmail,
		PreferredIncoterm: incoterm,
		Status:            status,
		Notes:             req.Notes,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logActivity(ctx, client.ID, "Client created",
		fmt.Sprintf("Client '%s' was created", client.Name))

	dto := mapper.ToClientDTO(client, 0)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	active, err := s.quotationRepo.CountActiveByClient(ctx, id)
	if err != nil {
		s.logger.Warn("failed to count active quotations", zap.String("client_id", id.String()), zap.Error(err))
	}

	dto := mapper.ToClientDTO(client, active)
	return &dto, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if req.TaxID != nil && *req.TaxID != client.TaxID && *req.TaxID != "" {
		existing, err := s.clientRepo.GetByTaxID(ctx, *req.TaxID)
		if err != nil {
			return nil, fmt.Errorf("failed to check tax id: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrDuplicateTaxID
		}
		client.TaxID = *req.TaxID
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.Country != nil {
		client.Country = *req.Country
	}
	if req.ContactPerson != nil {
		client.ContactPerson = *req.ContactPerson
	}
	if req.ContactEmail != nil {
		client.ContactEmail = *req.ContactEmail
	}
	if req.PreferredIncoterm != nil {
		if !req.PreferredIncoterm.IsValid() {
			return nil, fmt.Errorf("%w: incoterm %q", ErrInvalidInput, *req.PreferredIncoterm)
		}
		client.PreferredIncoterm = *req.PreferredIncoterm
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logActivity(ctx, client.ID, "Client updated",
		fmt.Sprintf("Client '%s' was updated", client.Name))

	active, _ := s.quotationRepo.CountActiveByClient(ctx, id)
	dto := mapper.ToClientDTO(client, active)
	return &dto, nil
}

// Delete removes a client. Clients that still own quotations cannot
// be removed; their commercial history must stay intact.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to get client: %w", err)
	}

	count, err := s.quotationRepo.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count quotations: %w", err)
	}
	if count > 0 {
		return ErrClientHasQuotations
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.logActivity(ctx, id, "Client deleted",
		fmt.Sprintf("Client '%s' was deleted", client.Name))
	return nil
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, filters *repository.ClientFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	clients, total, err := s.clientRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i], 0)
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

func (s *ClientService) logActivity(ctx context.Context, clientID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetClient,
		TargetID:    clientID,
		Title:       title,
		Body:        body,
		OccurredAt:  time.Now().UTC(),
		CreatorID:   auth.ActorID(ctx),
		CreatorName: auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.String("client_id", clientID.String()), zap.Error(err))
	}
}
