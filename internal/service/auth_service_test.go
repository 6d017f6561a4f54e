package service_test

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const testSecret = "unit-test-secret"

var _ = Describe("AuthService", func() {
	var (
		ctx      context.Context
		userRepo *userRepoMock
		svc      *service.AuthService
	)

	registerInput := func(email string) service.RegisterInput {
		return service.RegisterInput{
			Email:      email,
			Password:   "s3cret-pass",
			FirstName:  "Ada",
			LastName:   "Obi",
			Department: domain.DepartmentFinance,
			Site:       domain.SiteLagosOffice,
		}
	}

	codeOf := func(err error) string {
		return apperrors.ToDomainError(err).Code
	}

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newUserRepoMock()
		cfg := config.Config{
			Auth: config.AuthConfig{
				JWTSecret:             testSecret,
				AccessTokenTTLMinutes: 60,
				BcryptCost:            4,
			},
		}
		svc = service.NewAuthService(cfg, service.AuthDependencies{
			UserRepo:   userRepo,
			Dispatcher: events.NewInMemoryDispatcher(),
		})
	})

	Describe("Register", func() {
		It("creates an active USER by default and issues a token", func() {
			user, token, exp, err := svc.Register(ctx, registerInput("ada@example.com"))
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(domain.RoleUser))
			Expect(user.IsActive).To(BeTrue())
			Expect(user.PasswordHash).NotTo(Equal("s3cret-pass"))
			Expect(token).NotTo(BeEmpty())
			Expect(exp).To(BeTemporally(">", time.Now()))
		})

		It("rejects a duplicate email with a conflict", func() {
			_, _, _, err := svc.Register(ctx, registerInput("ada@example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, _, _, err = svc.Register(ctx, registerInput("ada@example.com"))
			Expect(err).To(HaveOccurred())
			Expect(codeOf(err)).To(Equal("CONFLICT"))
		})

		It("rejects a duplicate employee id with a conflict", func() {
			employeeID := "EMP-001"
			first := registerInput("ada@example.com")
			first.EmployeeID = &employeeID
			_, _, _, err := svc.Register(ctx, first)
			Expect(err).NotTo(HaveOccurred())

			second := registerInput("chidi@example.com")
			second.EmployeeID = &employeeID
			_, _, _, err = svc.Register(ctx, second)
			Expect(err).To(HaveOccurred())
			Expect(codeOf(err)).To(Equal("CONFLICT"))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			_, _, _, err := svc.Register(ctx, registerInput("ada@example.com"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("authenticates with correct credentials and touches last login", func() {
			user, token, _, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			stored, err := userRepo.GetByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.LastLogin).NotTo(BeNil())
		})

		It("still succeeds when the last-login write fails", func() {
			userRepo.touchLoginErr = errors.New("write refused")

			user, token, _, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("ada@example.com"))
			Expect(token).NotTo(BeEmpty())
		})

		It("reports the same generic failure for unknown email and wrong password", func() {
			_, _, _, unknownErr := svc.Login(ctx, "nobody@example.com", "s3cret-pass")
			Expect(unknownErr).To(HaveOccurred())
			Expect(codeOf(unknownErr)).To(Equal("UNAUTHORIZED"))

			_, _, _, wrongErr := svc.Login(ctx, "ada@example.com", "wrong")
			Expect(wrongErr).To(HaveOccurred())
			Expect(codeOf(wrongErr)).To(Equal("UNAUTHORIZED"))

			Expect(apperrors.ToDomainError(unknownErr).Message).To(Equal(apperrors.ToDomainError(wrongErr).Message))
		})

		It("reports a distinct outcome for a deactivated account with valid credentials", func() {
			user, err := userRepo.GetByEmail(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			user.IsActive = false
			Expect(userRepo.Update(ctx, user)).To(Succeed())

			_, _, _, loginErr := svc.Login(ctx, "ada@example.com", "s3cret-pass")
			Expect(loginErr).To(HaveOccurred())
			domainErr := apperrors.ToDomainError(loginErr)
			Expect(domainErr.Code).To(Equal("ACCOUNT_DEACTIVATED"))
			Expect(domainErr.HTTPStatus).To(Equal(403))
		})
	})

	Describe("tokens", func() {
		var issued string

		BeforeEach(func() {
			_, token, _, err := svc.Register(ctx, registerInput("ada@example.com"))
			Expect(err).NotTo(HaveOccurred())
			issued = token
		})

		It("validates an issued token back to its user", func() {
			user, ok := svc.ValidateToken(ctx, issued)
			Expect(ok).To(BeTrue())
			Expect(user.Email).To(Equal("ada@example.com"))
		})

		It("reports invalid for garbage and for a deleted subject", func() {
			_, ok := svc.ValidateToken(ctx, "garbage")
			Expect(ok).To(BeFalse())

			user, err := userRepo.GetByEmail(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(userRepo.Delete(ctx, user.ID)).To(Succeed())

			_, ok = svc.ValidateToken(ctx, issued)
			Expect(ok).To(BeFalse())
		})

		It("refreshes a valid token", func() {
			user, fresh, exp, err := svc.Refresh(ctx, issued)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("ada@example.com"))
			Expect(fresh).NotTo(BeEmpty())
			Expect(exp).To(BeTemporally(">", time.Now()))
		})

		It("refuses to refresh an expired token", func() {
			claims := &auth.Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "ada@example.com",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
					IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
			}
			expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			Expect(err).NotTo(HaveOccurred())

			_, _, _, refreshErr := svc.Refresh(ctx, expired)
			Expect(refreshErr).To(HaveOccurred())
			Expect(codeOf(refreshErr)).To(Equal("UNAUTHORIZED"))
		})

		It("refuses to refresh for a deactivated account", func() {
			user, err := userRepo.GetByEmail(ctx, "ada@example.com")
			Expect(err).NotTo(HaveOccurred())
			user.IsActive = false
			Expect(userRepo.Update(ctx, user)).To(Succeed())

			_, _, _, refreshErr := svc.Refresh(ctx, issued)
			Expect(refreshErr).To(HaveOccurred())
			Expect(codeOf(refreshErr)).To(Equal("ACCOUNT_DEACTIVATED"))
		})
	})

	Describe("ChangePassword", func() {
		var userID string

		BeforeEach(func() {
			user, _, _, err := svc.Register(ctx, registerInput("ada@example.com"))
			Expect(err).NotTo(HaveOccurred())
			userID = user.ID
		})

		It("requires the current password", func() {
			err := svc.ChangePassword(ctx, userID, "wrong", "new-pass-123")
			Expect(err).To(HaveOccurred())
			Expect(codeOf(err)).To(Equal("UNAUTHORIZED"))
		})

		It("stores the new password for subsequent logins", func() {
			Expect(svc.ChangePassword(ctx, userID, "s3cret-pass", "new-pass-123")).To(Succeed())

			_, _, _, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
			Expect(err).To(HaveOccurred())

			_, _, _, err = svc.Login(ctx, "ada@example.com", "new-pass-123")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
