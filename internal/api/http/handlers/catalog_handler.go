package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CatalogHandler exposes service catalog endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// Create handles POST /api/catalog.
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var req dto.CatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.catalog.CreateItem(c.Context(), catalogInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCatalogItemResponse(item)})
}

// Update handles PUT /api/catalog/:id.
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	var req dto.CatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	item, err := h.catalog.UpdateItem(c.Context(), c.Params("id"), catalogInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCatalogItemResponse(item)})
}

// Get handles GET /api/catalog/:id.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	item, err := h.catalog.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCatalogItemResponse(item)})
}

// List handles GET /api/catalog?active=true.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	items, err := h.catalog.ListItems(c.Context(), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCatalogItemResponses(items)})
}

func catalogInput(req dto.CatalogItemRequest) service.CatalogItemInput {
	return service.CatalogItemInput{
		Name:                     req.Name,
		Description:              req.Description,
		Category:                 req.Category,
		RequiredFields:           req.RequiredFields,
		IsActive:                 req.IsActive,
		EstimatedResolutionHours: req.EstimatedResolutionHours,
		AutoAssignToDepartment:   req.AutoAssignToDepartment,
	}
}
