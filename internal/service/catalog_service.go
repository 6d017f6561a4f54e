package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CatalogService manages the requestable service catalog that feeds ticket
// auto-assignment.
type CatalogService struct {
	catalog repository.CatalogRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// CatalogItemInput describes a catalog item create/update payload.
type CatalogItemInput struct {
	Name                     string
	Description              string
	Category                 domain.TicketCategory
	RequiredFields           string
	IsActive                 bool
	EstimatedResolutionHours *int
	AutoAssignToDepartment   *domain.Department
}

// CreateItem creates a catalog item. Names are unique.
func (s *CatalogService) CreateItem(ctx context.Context, input CatalogItemInput) (*domain.ServiceCatalogItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if _, err := s.catalog.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("catalog item name already exists", map[string]any{"field": "name"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	item := &domain.ServiceCatalogItem{
		Name:                     name,
		Description:              input.Description,
		Category:                 input.Category,
		RequiredFields:           input.RequiredFields,
		IsActive:                 input.IsActive,
		EstimatedResolutionHours: input.EstimatedResolutionHours,
		AutoAssignToDepartment:   input.AutoAssignToDepartment,
	}
	if err := s.catalog.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// UpdateItem applies changes to a catalog item.
func (s *CatalogService) UpdateItem(ctx context.Context, itemID string, input CatalogItemInput) (*domain.ServiceCatalogItem, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name != "" && name != item.Name {
		if _, err := s.catalog.GetByName(ctx, name); err == nil {
			return nil, apperrors.NewConflict("catalog item name already exists", map[string]any{"field": "name"})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		item.Name = name
	}
	item.Description = input.Description
	item.Category = input.Category
	item.RequiredFields = input.RequiredFields
	item.IsActive = input.IsActive
	item.EstimatedResolutionHours = input.EstimatedResolutionHours
	item.AutoAssignToDepartment = input.AutoAssignToDepartment

	if err := s.catalog.Update(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// GetItem fetches a catalog item by id.
func (s *CatalogService) GetItem(ctx context.Context, itemID string) (*domain.ServiceCatalogItem, error) {
	return s.getItem(ctx, itemID)
}

// ListItems returns catalog items, optionally only active ones.
func (s *CatalogService) ListItems(ctx context.Context, activeOnly bool) ([]domain.ServiceCatalogItem, error) {
	items, err := s.catalog.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

func (s *CatalogService) getItem(ctx context.Context, itemID string) (*domain.ServiceCatalogItem, error) {
	item, err := s.catalog.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service catalog item", map[string]any{"item_id": itemID})
		}
		return nil, apperrors.MapError(err)
	}
	return item, nil
}
