package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// activeAssigneeStatuses defines the workload counted by auto-assignment.
var activeAssigneeStatuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
}

// allowedTransitions is the ticket state graph. RESOLVED and CLOSED keep a
// reopen edge back to OPEN; CANCELLED has no outgoing edges.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:               {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress:         {domain.TicketStatusWaitingForApproval, domain.TicketStatusWaitingForUser, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusWaitingForApproval: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusWaitingForUser:     {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:           {domain.TicketStatusClosed, domain.TicketStatusOpen},
	domain.TicketStatusClosed:             {domain.TicketStatusOpen},
	domain.TicketStatusCancelled:          {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// TicketService owns ticket state transitions, assignment and auto-assignment.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	catalog    repository.CatalogRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	CatalogRepo repository.CatalogRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title                string
	Description          string
	Category             domain.TicketCategory
	Priority             domain.TicketPriority
	CreatedByID          string
	AssignedToID         *string
	ServiceCatalogItemID *string
	AdditionalData       string
	CCEmails             string
}

// TicketListFilter describes listing filters exposed to callers.
type TicketListFilter struct {
	CreatedByID  *string
	AssignedToID *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Category     *domain.TicketCategory
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		catalog:    deps.CatalogRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket. The creator must resolve to an existing
// active user; optional assignee and catalog item must resolve too. New
// tickets always start at OPEN, with priority defaulting to MEDIUM.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	creator, err := s.users.GetByID(ctx, input.CreatedByID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("creator user", map[string]any{"user_id": input.CreatedByID})
		}
		return nil, apperrors.MapError(err)
	}
	if !creator.IsActive {
		return nil, apperrors.NewNotFound("creator user", map[string]any{"user_id": input.CreatedByID})
	}

	if input.AssignedToID != nil {
		if _, err := s.resolveActiveAssignee(ctx, *input.AssignedToID); err != nil {
			return nil, err
		}
	}
	if input.ServiceCatalogItemID != nil {
		if _, err := s.catalog.GetByID(ctx, *input.ServiceCatalogItemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("service catalog item", map[string]any{"item_id": *input.ServiceCatalogItemID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	ticket := &domain.Ticket{
		ExternalKey:          generateTicketKey(),
		Title:                strings.TrimSpace(input.Title),
		Description:          strings.TrimSpace(input.Description),
		Status:               domain.TicketStatusOpen,
		Priority:             input.Priority,
		Category:             input.Category,
		CreatedByID:          creator.ID,
		AssignedToID:         input.AssignedToID,
		ServiceCatalogItemID: input.ServiceCatalogItemID,
		AdditionalData:       input.AdditionalData,
		CCEmails:             input.CCEmails,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &creator.ID,
		Payload: events.TicketCreatedPayload{
			Category:  ticket.Category,
			Priority:  ticket.Priority,
			Title:     ticket.Title,
			CreatedBy: creator.ID,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

// AssignTicket sets the assignee, overwriting any previous one. Both the
// ticket and the user must exist; the ticket is not mutated otherwise.
func (s *TicketService) AssignTicket(ctx context.Context, caller *domain.User, ticketID, userID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.resolveActiveAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}

	ticket.AssignedToID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actorID(caller),
		Payload:  events.TicketAssignedPayload{AssignedToID: ticket.AssignedToID},
	})
	return ticket, nil
}

// UnassignTicket clears the assignee without touching the status.
func (s *TicketService) UnassignTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.AssignedToID = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUnassigned,
		TicketID: ticket.ID,
		ActorID:  actorID(caller),
		Payload:  events.TicketAssignedPayload{},
	})
	return ticket, nil
}

// UpdateStatus transitions the ticket along the state graph. Entering
// RESOLVED stamps ResolvedAt; reopening to OPEN clears it. The timestamp
// change is written atomically with the status.
func (s *TicketService) UpdateStatus(ctx context.Context, caller *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(newStatus))
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusResolved:
		now := time.Now()
		ticket.ResolvedAt = &now
	case domain.TicketStatusOpen:
		ticket.ResolvedAt = nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actorID(caller),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// ResolveTicket marks the ticket RESOLVED.
func (s *TicketService) ResolveTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.UpdateStatus(ctx, caller, ticketID, domain.TicketStatusResolved)
}

// CloseTicket marks the ticket CLOSED.
func (s *TicketService) CloseTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.UpdateStatus(ctx, caller, ticketID, domain.TicketStatusClosed)
}

// ReopenTicket returns a resolved or closed ticket to OPEN, clearing its
// resolution timestamp.
func (s *TicketService) ReopenTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.UpdateStatus(ctx, caller, ticketID, domain.TicketStatusOpen)
}

// UpdatePriority changes the ticket priority. Priority is independent of the
// lifecycle graph and may be set in any state.
func (s *TicketService) UpdatePriority(ctx context.Context, caller *domain.User, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		ActorID:  actorID(caller),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// AutoAssignTicket selects an assignee from the ticket's service catalog
// item. The item's department hint narrows candidates to active technicians
// of that department; the one with the fewest OPEN or IN_PROGRESS assigned
// tickets wins, ties broken by smallest user id so the choice is stable. A
// missing item, hint, or candidate pool is a no-op: the ticket is returned
// unchanged with a nil assignee.
func (s *TicketService) AutoAssignTicket(ctx context.Context, ticketID string) (*domain.Ticket, *domain.User, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.ServiceCatalogItemID == nil {
		return ticket, nil, nil
	}

	item, err := s.catalog.GetByID(ctx, *ticket.ServiceCatalogItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("service catalog item", map[string]any{"item_id": *ticket.ServiceCatalogItemID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if item.AutoAssignToDepartment == nil {
		return ticket, nil, nil
	}

	candidates, err := s.users.ListActiveTechniciansByDepartment(ctx, *item.AutoAssignToDepartment)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if len(candidates) == 0 {
		return ticket, nil, nil
	}

	assignee, err := s.leastLoaded(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}

	ticket.AssignedToID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AssignedToID: ticket.AssignedToID, Auto: true},
	})
	return ticket, assignee, nil
}

// DeleteTicket removes a ticket outright. This is an administrative bypass,
// not part of the lifecycle.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		CreatedByID:  filter.CreatedByID,
		AssignedToID: filter.AssignedToID,
		Statuses:     filter.Statuses,
		Priorities:   filter.Priorities,
		Category:     filter.Category,
		SearchTerm:   filter.SearchTerm,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// FindByStatus returns tickets in the given status.
func (s *TicketService) FindByStatus(ctx context.Context, status domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	return s.ListTickets(ctx, TicketListFilter{
		Statuses: []domain.TicketStatus{status},
		Limit:    limit,
		Offset:   offset,
	})
}

// FindByCategory returns tickets in the given category.
func (s *TicketService) FindByCategory(ctx context.Context, category domain.TicketCategory, limit, offset int) ([]domain.Ticket, error) {
	return s.ListTickets(ctx, TicketListFilter{
		Category: &category,
		Limit:    limit,
		Offset:   offset,
	})
}

// FindByCreatedBetween returns tickets created within [from, to].
func (s *TicketService) FindByCreatedBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]domain.Ticket, error) {
	return s.ListTickets(ctx, TicketListFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
		Limit:       limit,
		Offset:      offset,
	})
}

// SearchByKeyword matches the keyword against title and description.
func (s *TicketService) SearchByKeyword(ctx context.Context, keyword string, limit, offset int) ([]domain.Ticket, error) {
	return s.ListTickets(ctx, TicketListFilter{
		SearchTerm: &keyword,
		Limit:      limit,
		Offset:     offset,
	})
}

// FindByCreator returns tickets filed by the user.
func (s *TicketService) FindByCreator(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	return s.ListTickets(ctx, TicketListFilter{
		CreatedByID: &userID,
		Limit:       limit,
		Offset:      offset,
	})
}

// FindByAssignee returns tickets assigned to the user.
func (s *TicketService) FindByAssignee(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	return s.ListTickets(ctx, TicketListFilter{
		AssignedToID: &userID,
		Limit:        limit,
		Offset:       offset,
	})
}

// FindByCreatorDepartment returns tickets whose creator belongs to the
// department.
func (s *TicketService) FindByCreatorDepartment(ctx context.Context, department domain.Department) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByCreatorDepartment(ctx, department)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// FindUnassignedOpen returns OPEN tickets without an assignee.
func (s *TicketService) FindUnassignedOpen(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListUnassignedOpen(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// FindUrgentActive returns tickets with URGENT priority in OPEN or
// IN_PROGRESS. Escalation and dashboards rely on exactly this predicate.
func (s *TicketService) FindUrgentActive(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListUrgentActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// CountByStatus counts tickets in a status.
func (s *TicketService) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	count, err := s.tickets.CountByStatus(ctx, status)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// CountAssignedByStatus counts a user's assigned tickets in the statuses.
func (s *TicketService) CountAssignedByStatus(ctx context.Context, userID string, statuses []domain.TicketStatus) (int64, error) {
	count, err := s.tickets.CountAssignedByStatus(ctx, userID, statuses)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// CountCreatedBy counts tickets filed by the user.
func (s *TicketService) CountCreatedBy(ctx context.Context, userID string) (int64, error) {
	count, err := s.tickets.CountCreatedBy(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) resolveActiveAssignee(ctx context.Context, userID string) (*domain.User, error) {
	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsActive {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"user_id": userID})
	}
	return assignee, nil
}

// leastLoaded picks the candidate with the fewest active assigned tickets.
// Candidates arrive ordered by id; strict less-than keeps the earliest on a
// tie, so repeated runs over unchanged state pick the same technician.
func (s *TicketService) leastLoaded(ctx context.Context, candidates []domain.User) (*domain.User, error) {
	var best *domain.User
	var bestCount int64
	for i := range candidates {
		count, err := s.tickets.CountAssignedByStatus(ctx, candidates[i].ID, activeAssigneeStatuses)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if best == nil || count < bestCount {
			best = &candidates[i]
			bestCount = count
		}
	}
	return best, nil
}

func generateTicketKey() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func actorID(caller *domain.User) *string {
	if caller == nil {
		return nil
	}
	return &caller.ID
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
