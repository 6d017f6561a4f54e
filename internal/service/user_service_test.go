package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var _ = Describe("UserService", func() {
	var (
		ctx      context.Context
		userRepo *userRepoMock
		svc      *service.UserService
	)

	createInput := func(email string, role domain.Role, dept domain.Department) service.UserCreateInput {
		return service.UserCreateInput{
			Email:      email,
			Password:   "s3cret-pass",
			FirstName:  "Ngozi",
			LastName:   "Eze",
			Department: dept,
			Site:       domain.SiteAbujaOffice,
			Role:       role,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		userRepo = newUserRepoMock()
		svc = service.NewUserService(userRepo, 4)
	})

	Describe("CreateUser", func() {
		It("hashes the password and activates the account", func() {
			user, err := svc.CreateUser(ctx, createInput("ngozi@example.com", domain.RoleTechnician, domain.DepartmentFinance))
			Expect(err).NotTo(HaveOccurred())
			Expect(user.IsActive).To(BeTrue())
			Expect(user.PasswordHash).NotTo(Equal("s3cret-pass"))
		})

		It("rejects duplicate emails", func() {
			_, err := svc.CreateUser(ctx, createInput("ngozi@example.com", domain.RoleUser, domain.DepartmentFinance))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateUser(ctx, createInput("ngozi@example.com", domain.RoleUser, domain.DepartmentFinance))
			Expect(err).To(HaveOccurred())
			Expect(apperrors.ToDomainError(err).Code).To(Equal("CONFLICT"))
		})
	})

	Describe("UpdateUser", func() {
		It("re-checks uniqueness only when the email changes", func() {
			first, err := svc.CreateUser(ctx, createInput("first@example.com", domain.RoleUser, domain.DepartmentFinance))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateUser(ctx, createInput("second@example.com", domain.RoleUser, domain.DepartmentFinance))
			Expect(err).NotTo(HaveOccurred())

			// Same email: no conflict.
			_, err = svc.UpdateUser(ctx, first.ID, service.UserUpdateInput{
				Email:      "first@example.com",
				FirstName:  "Renamed",
				LastName:   "Eze",
				Department: domain.DepartmentMarketing,
				Site:       domain.SiteLagosOffice,
			})
			Expect(err).NotTo(HaveOccurred())

			// Taken email: conflict.
			_, err = svc.UpdateUser(ctx, first.ID, service.UserUpdateInput{
				Email:      "second@example.com",
				FirstName:  "Renamed",
				LastName:   "Eze",
				Department: domain.DepartmentMarketing,
				Site:       domain.SiteLagosOffice,
			})
			Expect(err).To(HaveOccurred())
			Expect(apperrors.ToDomainError(err).Code).To(Equal("CONFLICT"))
		})
	})

	Describe("activation", func() {
		It("deactivates and reactivates without deleting the record", func() {
			user, err := svc.CreateUser(ctx, createInput("ngozi@example.com", domain.RoleUser, domain.DepartmentFinance))
			Expect(err).NotTo(HaveOccurred())

			deactivated, err := svc.DeactivateUser(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deactivated.IsActive).To(BeFalse())

			reactivated, err := svc.ActivateUser(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reactivated.IsActive).To(BeTrue())
		})
	})

	Describe("queries", func() {
		BeforeEach(func() {
			_, err := svc.CreateUser(ctx, createInput("tech1@example.com", domain.RoleTechnician, domain.DepartmentSystemNetwork))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateUser(ctx, createInput("tech2@example.com", domain.RoleTechnician, domain.DepartmentFinance))
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateUser(ctx, createInput("mgr@example.com", domain.RoleManager, domain.DepartmentSystemNetwork))
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists only active technicians of the department", func() {
			techs, err := svc.ListTechniciansByDepartment(ctx, domain.DepartmentSystemNetwork)
			Expect(err).NotTo(HaveOccurred())
			Expect(techs).To(HaveLen(1))
			Expect(techs[0].Email).To(Equal("tech1@example.com"))
		})

		It("aggregates statistics by activity, department and role", func() {
			user, err := svc.GetUserByEmail(ctx, "tech2@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.DeactivateUser(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())

			stats, err := svc.Statistics(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalUsers).To(Equal(int64(3)))
			Expect(stats.ActiveUsers).To(Equal(int64(2)))
			Expect(stats.InactiveUsers).To(Equal(int64(1)))
			Expect(stats.UsersByRole[domain.RoleTechnician]).To(Equal(int64(2)))
			Expect(stats.UsersByRole[domain.RoleManager]).To(Equal(int64(1)))
			Expect(stats.UsersByDepartment[domain.DepartmentSystemNetwork]).To(Equal(int64(2)))
		})

		It("searches by name fragments", func() {
			users, err := svc.SearchByName(ctx, "mgr", 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal("mgr@example.com"))
		})
	})
})
