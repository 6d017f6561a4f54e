package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title                string                `json:"title"`
	Description          string                `json:"description"`
	Category             domain.TicketCategory `json:"category"`
	Priority             domain.TicketPriority `json:"priority,omitempty"`
	AssignedToID         *string               `json:"assigned_to_id,omitempty"`
	ServiceCatalogItemID *string               `json:"service_catalog_item_id,omitempty"`
	AdditionalData       string                `json:"additional_data,omitempty"`
	CCEmails             string                `json:"cc_emails,omitempty"`
}

// AssignTicketRequest names the assignee.
type AssignTicketRequest struct {
	UserID string `json:"user_id"`
}

// UpdateStatusRequest carries the target status.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest carries the target priority.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID                   string                `json:"id"`
	ExternalKey          string                `json:"external_key"`
	Title                string                `json:"title"`
	Description          string                `json:"description"`
	Status               domain.TicketStatus   `json:"status"`
	Priority             domain.TicketPriority `json:"priority"`
	Category             domain.TicketCategory `json:"category"`
	CreatedByID          string                `json:"created_by_id"`
	AssignedToID         *string               `json:"assigned_to_id,omitempty"`
	ServiceCatalogItemID *string               `json:"service_catalog_item_id,omitempty"`
	AdditionalData       string                `json:"additional_data,omitempty"`
	CCEmails             string                `json:"cc_emails,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
	ResolvedAt           *time.Time            `json:"resolved_at,omitempty"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                   ticket.ID,
		ExternalKey:          ticket.ExternalKey,
		Title:                ticket.Title,
		Description:          ticket.Description,
		Status:               ticket.Status,
		Priority:             ticket.Priority,
		Category:             ticket.Category,
		CreatedByID:          ticket.CreatedByID,
		AssignedToID:         ticket.AssignedToID,
		ServiceCatalogItemID: ticket.ServiceCatalogItemID,
		AdditionalData:       ticket.AdditionalData,
		CCEmails:             ticket.CCEmails,
		CreatedAt:            ticket.CreatedAt,
		UpdatedAt:            ticket.UpdatedAt,
		ResolvedAt:           ticket.ResolvedAt,
	}
}

// NewTicketResponses maps a slice of domain tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// AutoAssignResponse reports the outcome of an auto-assignment attempt. A nil
// assignee means no eligible technician was found and the ticket is unchanged.
type AutoAssignResponse struct {
	Ticket   TicketResponse `json:"ticket"`
	Assignee *UserResponse  `json:"assignee,omitempty"`
}
