package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email      string            `json:"email"`
	Password   string            `json:"password"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Department domain.Department `json:"department"`
	Site       domain.Site       `json:"site"`
	Role       domain.Role       `json:"role,omitempty"`
	EmployeeID *string           `json:"employee_id,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries the token to refresh.
type RefreshRequest struct {
	Token string `json:"token"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest payload for administrative user creation.
type CreateUserRequest struct {
	Email      string            `json:"email"`
	Password   string            `json:"password"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Department domain.Department `json:"department"`
	Site       domain.Site       `json:"site"`
	Role       domain.Role       `json:"role"`
	EmployeeID *string           `json:"employee_id,omitempty"`
}

// UpdateUserRequest payload.
type UpdateUserRequest struct {
	Email      string            `json:"email"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Department domain.Department `json:"department"`
	Site       domain.Site       `json:"site"`
	Role       domain.Role       `json:"role,omitempty"`
	EmployeeID *string           `json:"employee_id,omitempty"`
}

// UserResponse is the public view of a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	FullName   string            `json:"full_name"`
	Department domain.Department `json:"department"`
	Site       domain.Site       `json:"site"`
	Role       domain.Role       `json:"role"`
	IsActive   bool              `json:"is_active"`
	EmployeeID *string           `json:"employee_id,omitempty"`
	LastLogin  *time.Time        `json:"last_login,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		FullName:   user.FullName(),
		Department: user.Department,
		Site:       user.Site,
		Role:       user.Role,
		IsActive:   user.IsActive,
		EmployeeID: user.EmployeeID,
		LastLogin:  user.LastLogin,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// NewUserResponses maps a slice of domain users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
