package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and token flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Department domain.Department
	Site       domain.Site
	Role       domain.Role
	EmployeeID *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a user by email and password. A deactivated account is
// rejected with a distinct outcome even when the password is correct; an
// unknown email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewAccountDeactivated()
	}

	token, exp, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	// Last-login is best-effort bookkeeping; credentials are already verified.
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, token, exp, nil
}

// Register creates a new account. Email and employee id conflicts are
// detected before any write; role defaults to USER.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if exists {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	}
	if input.EmployeeID != nil {
		exists, err := s.users.ExistsByEmployeeID(ctx, *input.EmployeeID)
		if err != nil {
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
		if exists {
			return nil, "", time.Time{}, apperrors.NewConflict("employee id already registered", map[string]any{"field": "employee_id"})
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
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
	// The unique indexes catch the race where two registrations with the
	// same email pass the exists check concurrently; one insert loses and
	// surfaces as a conflict.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	s.publishRegistered(ctx, user)
	return user, token, exp, nil
}

// Refresh re-derives the subject from an existing token and, when the token
// is still valid for that user, issues a fresh one. Expired or tampered
// tokens are never extended.
func (s *AuthService) Refresh(ctx context.Context, tokenStr string) (*domain.User, string, time.Time, error) {
	email, err := s.tokenMgr.ExtractSubject(tokenStr)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid or expired token")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid or expired token")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !s.tokenMgr.Validate(tokenStr, user) {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid or expired token")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewAccountDeactivated()
	}

	token, exp, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// ValidateToken resolves the token's subject and checks it against the
// stored user. Bad tokens and absent users report invalid; they never error
// out of this boundary.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*domain.User, bool) {
	email, err := s.tokenMgr.ExtractSubject(tokenStr)
	if err != nil {
		return nil, false
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false
	}
	if !s.tokenMgr.Validate(tokenStr, user) {
		return nil, false
	}
	if !user.IsActive {
		return nil, false
	}
	return user, true
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishRegistered(ctx context.Context, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		ActorID:   &user.ID,
		Timestamp: time.Now(),
		Payload: events.UserRegisteredPayload{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
	})
}
