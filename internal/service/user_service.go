package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UserService coordinates user management on top of the credential store.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UserCreateInput describes an administrative user creation payload.
type UserCreateInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Department domain.Department
	Site       domain.Site
	Role       domain.Role
	EmployeeID *string
}

// UserUpdateInput describes a user update payload.
type UserUpdateInput struct {
	Email      string
	FirstName  string
	LastName   string
	Department domain.Department
	Site       domain.Site
	Role       domain.Role
	EmployeeID *string
}

// UserStatistics aggregates headcount by activity, department and role.
type UserStatistics struct {
	TotalUsers        int64                       `json:"total_users"`
	ActiveUsers       int64                       `json:"active_users"`
	InactiveUsers     int64                       `json:"inactive_users"`
	UsersByDepartment map[domain.Department]int64 `json:"users_by_department"`
	UsersByRole       map[domain.Role]int64       `json:"users_by_role"`
}

// CreateUser creates a user record with a hashed password. Conflicts on
// email or employee id are reported before any write.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	}
	if input.EmployeeID != nil {
		exists, err := s.users.ExistsByEmployeeID(ctx, *input.EmployeeID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if exists {
			return nil, apperrors.NewConflict("employee id already registered", map[string]any{"field": "employee_id"})
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Department:   input.Department,
		Site:         input.Site,
		Role:         role,
		IsActive:     true,
		EmployeeID:   input.EmployeeID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser applies profile changes, re-checking uniqueness whenever the
// email or employee id actually changes.
func (s *UserService) UpdateUser(ctx context.Context, userID string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if exists {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		}
	}
	if input.EmployeeID != nil && (user.EmployeeID == nil || *input.EmployeeID != *user.EmployeeID) {
		exists, err := s.users.ExistsByEmployeeID(ctx, *input.EmployeeID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if exists {
			return nil, apperrors.NewConflict("employee id already registered", map[string]any{"field": "employee_id"})
		}
	}

	user.Email = input.Email
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Department = input.Department
	user.Site = input.Site
	if input.Role != "" {
		user.Role = input.Role
	}
	user.EmployeeID = input.EmployeeID

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.getUser(ctx, userID)
}

// GetUserByEmail fetches a user by email. Comparison is case-sensitive.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUserByEmployeeID fetches a user by employee id.
func (s *UserService) GetUserByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	user, err := s.users.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns users matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// SearchByName matches names and emails against the query string.
func (s *UserService) SearchByName(ctx context.Context, name string, limit, offset int) ([]domain.User, error) {
	return s.ListUsers(ctx, repository.UserFilter{
		NameSearch: &name,
		Limit:      limit,
		Offset:     offset,
	})
}

// ListTechniciansByDepartment returns active technicians for a department,
// the candidate pool used by auto-assignment.
func (s *UserService) ListTechniciansByDepartment(ctx context.Context, department domain.Department) ([]domain.User, error) {
	users, err := s.users.ListActiveTechniciansByDepartment(ctx, department)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ActivateUser re-enables a deactivated account.
func (s *UserService) ActivateUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.setActive(ctx, userID, true)
}

// DeactivateUser disables an account. The user's records remain; only
// authentication and eligibility are affected.
func (s *UserService) DeactivateUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.setActive(ctx, userID, false)
}

// DeleteUser removes a user outright. This is an administrative bypass, not
// part of the normal lifecycle.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Statistics aggregates user counts by activity, department and role.
func (s *UserService) Statistics(ctx context.Context) (*UserStatistics, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byDepartment := make(map[domain.Department]int64)
	var active int64
	for _, dept := range []domain.Department{
		domain.DepartmentFinance,
		domain.DepartmentHRAdmin,
		domain.DepartmentMarketing,
		domain.DepartmentSystemNetwork,
	} {
		count, err := s.users.CountActiveByDepartment(ctx, dept)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		byDepartment[dept] = count
		active += count
	}

	byRole := make(map[domain.Role]int64)
	for _, role := range []domain.Role{
		domain.RoleUser,
		domain.RoleTechnician,
		domain.RoleManager,
		domain.RoleAdmin,
	} {
		count, err := s.users.CountByRole(ctx, role)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		byRole[role] = count
	}

	return &UserStatistics{
		TotalUsers:        total,
		ActiveUsers:       active,
		InactiveUsers:     total - active,
		UsersByDepartment: byDepartment,
		UsersByRole:       byRole,
	}, nil
}

func (s *UserService) setActive(ctx context.Context, userID string, active bool) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
