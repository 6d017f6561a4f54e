package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CatalogItemRequest payload for catalog item create/update.
type CatalogItemRequest struct {
	Name                     string                `json:"name"`
	Description              string                `json:"description"`
	Category                 domain.TicketCategory `json:"category"`
	RequiredFields           string                `json:"required_fields,omitempty"`
	IsActive                 bool                  `json:"is_active"`
	EstimatedResolutionHours *int                  `json:"estimated_resolution_hours,omitempty"`
	AutoAssignToDepartment   *domain.Department    `json:"auto_assign_to_department,omitempty"`
}

// CatalogItemResponse is the public view of a catalog item.
type CatalogItemResponse struct {
	ID                       string                `json:"id"`
	Name                     string                `json:"name"`
	Description              string                `json:"description"`
	Category                 domain.TicketCategory `json:"category"`
	RequiredFields           string                `json:"required_fields,omitempty"`
	IsActive                 bool                  `json:"is_active"`
	EstimatedResolutionHours *int                  `json:"estimated_resolution_hours,omitempty"`
	AutoAssignToDepartment   *domain.Department    `json:"auto_assign_to_department,omitempty"`
	CreatedAt                time.Time             `json:"created_at"`
}

// NewCatalogItemResponse maps a domain catalog item.
func NewCatalogItemResponse(item *domain.ServiceCatalogItem) CatalogItemResponse {
	return CatalogItemResponse{
		ID:                       item.ID,
		Name:                     item.Name,
		Description:              item.Description,
		Category:                 item.Category,
		RequiredFields:           item.RequiredFields,
		IsActive:                 item.IsActive,
		EstimatedResolutionHours: item.EstimatedResolutionHours,
		AutoAssignToDepartment:   item.AutoAssignToDepartment,
		CreatedAt:                item.CreatedAt,
	}
}

// NewCatalogItemResponses maps a slice of catalog items.
func NewCatalogItemResponses(items []domain.ServiceCatalogItem) []CatalogItemResponse {
	out := make([]CatalogItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCatalogItemResponse(&items[i]))
	}
	return out
}
