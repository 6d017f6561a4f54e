package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen               TicketStatus = "OPEN"
	TicketStatusInProgress         TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingForApproval TicketStatus = "WAITING_FOR_APPROVAL"
	TicketStatusWaitingForUser     TicketStatus = "WAITING_FOR_USER"
	TicketStatusResolved           TicketStatus = "RESOLVED"
	TicketStatusClosed             TicketStatus = "CLOSED"
	TicketStatusCancelled          TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketCategory enumerates the fixed service categories.
type TicketCategory string

const (
	CategoryAccountManagement TicketCategory = "ACCOUNT_MANAGEMENT"
	CategoryApplications      TicketCategory = "APPLICATIONS"
	CategoryFacilities        TicketCategory = "FACILITIES"
	CategoryFinance           TicketCategory = "FINANCE"
	CategoryHardware          TicketCategory = "HARDWARE"
	CategoryHumanResources    TicketCategory = "HUMAN_RESOURCES"
	CategoryNetworking        TicketCategory = "NETWORKING"
)

// Ticket is the aggregate for helpdesk requests.
type Ticket struct {
	ID                   string
	ExternalKey          string
	Title                string
	Description          string
	Status               TicketStatus
	Priority             TicketPriority
	Category             TicketCategory
	CreatedByID          string
	AssignedToID         *string
	ServiceCatalogItemID *string
	AdditionalData       string
	CCEmails             string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ResolvedAt           *time.Time
}

// IsTerminal reports whether no further transitions are permitted from the
// current status. CLOSED tickets may still be reopened; CANCELLED may not.
func (t *Ticket) IsTerminal() bool {
	return t.Status == TicketStatusCancelled
}
