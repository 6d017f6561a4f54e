package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// userRepoMock is an in-memory stand-in for the Postgres user repository.
type userRepoMock struct {
	mu            sync.Mutex
	users         map[string]*domain.User
	touchLoginErr error
}

func newUserRepoMock() *userRepoMock {
	return &userRepoMock{users: make(map[string]*domain.User)}
}

func (m *userRepoMock) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *userRepoMock) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *userRepoMock) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *userRepoMock) GetByEmployeeID(_ context.Context, employeeID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.EmployeeID != nil && *user.EmployeeID == employeeID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *userRepoMock) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *userRepoMock) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	_, err := m.GetByEmployeeID(ctx, employeeID)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *userRepoMock) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.User
	for _, user := range m.users {
		if filter.Department != nil && user.Department != *filter.Department {
			continue
		}
		if filter.Site != nil && user.Site != *filter.Site {
			continue
		}
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && user.IsActive != *filter.Active {
			continue
		}
		if filter.NameSearch != nil {
			needle := strings.ToLower(*filter.NameSearch)
			haystack := strings.ToLower(user.FirstName + " " + user.LastName + " " + user.Email)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *userRepoMock) ListActiveTechniciansByDepartment(_ context.Context, department domain.Department) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.User
	for _, user := range m.users {
		if user.Department == department && user.Role == domain.RoleTechnician && user.IsActive {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *userRepoMock) CountActiveByDepartment(_ context.Context, department domain.Department) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, user := range m.users {
		if user.Department == department && user.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *userRepoMock) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, user := range m.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *userRepoMock) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *userRepoMock) TouchLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchLoginErr != nil {
		return m.touchLoginErr
	}
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	user.LastLogin = &now
	user.UpdatedAt = now
	return nil
}

// ticketRepoMock mirrors the ticket store in memory.
type ticketRepoMock struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newTicketRepoMock() *ticketRepoMock {
	return &ticketRepoMock{tickets: make(map[string]*domain.Ticket)}
}

func (m *ticketRepoMock) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	cp := *ticket
	m.tickets[ticket.ID] = &cp
	return nil
}

func (m *ticketRepoMock) Update(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	cp := *ticket
	m.tickets[ticket.ID] = &cp
	return nil
}

func (m *ticketRepoMock) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	return nil
}

func (m *ticketRepoMock) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (m *ticketRepoMock) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ticket := range m.tickets {
		if ticket.ExternalKey == key {
			cp := *ticket
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *ticketRepoMock) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		if filter.CreatedByID != nil && ticket.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.AssignedToID != nil && (ticket.AssignedToID == nil || *ticket.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		if filter.Category != nil && ticket.Category != *filter.Category {
			continue
		}
		if filter.SearchTerm != nil {
			needle := strings.ToLower(*filter.SearchTerm)
			haystack := strings.ToLower(ticket.Title + " " + ticket.Description)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *ticketRepoMock) ListByCreatorDepartment(_ context.Context, _ domain.Department) ([]domain.Ticket, error) {
	return nil, nil
}

func (m *ticketRepoMock) ListUnassignedOpen(ctx context.Context) ([]domain.Ticket, error) {
	all, _ := m.ListWithFilter(ctx, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen}})
	var result []domain.Ticket
	for _, ticket := range all {
		if ticket.AssignedToID == nil {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (m *ticketRepoMock) ListUrgentActive(ctx context.Context) ([]domain.Ticket, error) {
	return m.ListWithFilter(ctx, repository.TicketFilter{
		Priorities: []domain.TicketPriority{domain.TicketPriorityUrgent},
		Statuses:   []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
	})
}

func (m *ticketRepoMock) CountByStatus(_ context.Context, status domain.TicketStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, ticket := range m.tickets {
		if ticket.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *ticketRepoMock) CountAssignedByStatus(_ context.Context, assigneeID string, statuses []domain.TicketStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, ticket := range m.tickets {
		if ticket.AssignedToID == nil || *ticket.AssignedToID != assigneeID {
			continue
		}
		if containsStatus(statuses, ticket.Status) {
			count++
		}
	}
	return count, nil
}

func (m *ticketRepoMock) CountCreatedBy(_ context.Context, creatorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, ticket := range m.tickets {
		if ticket.CreatedByID == creatorID {
			count++
		}
	}
	return count, nil
}

// catalogRepoMock mirrors the catalog store in memory.
type catalogRepoMock struct {
	mu    sync.Mutex
	items map[string]*domain.ServiceCatalogItem
}

func newCatalogRepoMock() *catalogRepoMock {
	return &catalogRepoMock{items: make(map[string]*domain.ServiceCatalogItem)}
}

func (m *catalogRepoMock) Create(_ context.Context, item *domain.ServiceCatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *catalogRepoMock) Update(_ context.Context, item *domain.ServiceCatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *catalogRepoMock) GetByID(_ context.Context, id string) (*domain.ServiceCatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (m *catalogRepoMock) GetByName(_ context.Context, name string) (*domain.ServiceCatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.Name == name {
			cp := *item
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *catalogRepoMock) List(_ context.Context, activeOnly bool) ([]domain.ServiceCatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.ServiceCatalogItem
	for _, item := range m.items {
		if activeOnly && !item.IsActive {
			continue
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}
