package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var _ = Describe("CatalogService", func() {
	var (
		ctx     context.Context
		catalog *catalogRepoMock
		svc     *service.CatalogService
	)

	itemInput := func(name string) service.CatalogItemInput {
		return service.CatalogItemInput{
			Name:        name,
			Description: "Provision a laptop for a new hire",
			Category:    domain.CategoryHardware,
			IsActive:    true,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		catalog = newCatalogRepoMock()
		svc = service.NewCatalogService(catalog)
	})

	It("creates and fetches items", func() {
		created, err := svc.CreateItem(ctx, itemInput("Laptop provisioning"))
		Expect(err).NotTo(HaveOccurred())

		fetched, err := svc.GetItem(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(fetched.Name).To(Equal("Laptop provisioning"))
	})

	It("requires a non-blank name", func() {
		_, err := svc.CreateItem(ctx, itemInput("   "))
		Expect(err).To(HaveOccurred())
		Expect(apperrors.ToDomainError(err).Code).To(Equal("VALIDATION_FAILED"))
	})

	It("rejects duplicate names", func() {
		_, err := svc.CreateItem(ctx, itemInput("Laptop provisioning"))
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.CreateItem(ctx, itemInput("Laptop provisioning"))
		Expect(err).To(HaveOccurred())
		Expect(apperrors.ToDomainError(err).Code).To(Equal("CONFLICT"))
	})

	It("rejects renaming onto a taken name but allows keeping the same name", func() {
		first, err := svc.CreateItem(ctx, itemInput("Laptop provisioning"))
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.CreateItem(ctx, itemInput("VPN access"))
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.UpdateItem(ctx, first.ID, itemInput("Laptop provisioning"))
		Expect(err).NotTo(HaveOccurred())

		_, err = svc.UpdateItem(ctx, first.ID, itemInput("VPN access"))
		Expect(err).To(HaveOccurred())
		Expect(apperrors.ToDomainError(err).Code).To(Equal("CONFLICT"))
	})

	It("filters inactive items when asked", func() {
		_, err := svc.CreateItem(ctx, itemInput("Laptop provisioning"))
		Expect(err).NotTo(HaveOccurred())
		retired := itemInput("Legacy printer setup")
		retired.IsActive = false
		_, err = svc.CreateItem(ctx, retired)
		Expect(err).NotTo(HaveOccurred())

		all, err := svc.ListItems(ctx, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))

		active, err := svc.ListItems(ctx, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(HaveLen(1))
		Expect(active[0].Name).To(Equal("Laptop provisioning"))
	})
})
