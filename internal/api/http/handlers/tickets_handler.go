package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler exposes ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create handles POST /api/tickets. The caller is always the creator.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), service.TicketCreateInput{
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		Priority:             req.Priority,
		CreatedByID:          caller.ID,
		AssignedToID:         req.AssignedToID,
		ServiceCatalogItemID: req.ServiceCatalogItemID,
		AdditionalData:       req.AdditionalData,
		CCEmails:             req.CCEmails,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Get handles GET /api/tickets/:id. Same visibility rule as List: callers
// without the broader view capability only ever see their own tickets, and a
// foreign ticket reads as absent.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if auth.Authorize(caller, auth.CapabilityViewTickets, nil) != nil && ticket.CreatedByID != caller.ID {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List handles GET /api/tickets. Query params narrow the result set; plain
// USERs only ever see their own tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.TicketListFilter{}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(priority)}
	}
	if category := c.Query("category"); category != "" {
		cat := domain.TicketCategory(category)
		filter.Category = &cat
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedToID = &assignee
	}
	if creator := c.Query("created_by"); creator != "" {
		filter.CreatedByID = &creator
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	filter.Limit, filter.Offset = pagination(c)

	if auth.Authorize(caller, auth.CapabilityViewTickets, nil) != nil {
		filter.CreatedByID = &caller.ID
	}

	tickets, err := h.tickets.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Assign handles POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	ticket, err := h.tickets.AssignTicket(c.Context(), caller, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Unassign handles POST /api/tickets/:id/unassign.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	ticket, err := h.tickets.UnassignTicket(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// AutoAssign handles POST /api/tickets/:id/auto-assign. A nil assignee in the
// response means no eligible technician was found.
func (h *TicketsHandler) AutoAssign(c *fiber.Ctx) error {
	ticket, assignee, err := h.tickets.AutoAssignTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.AutoAssignResponse{Ticket: dto.NewTicketResponse(ticket)}
	if assignee != nil {
		user := dto.NewUserResponse(assignee)
		resp.Assignee = &user
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateStatus handles PUT /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdatePriority handles PUT /api/tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" {
		return apperrors.NewValidationError("priority required", nil)
	}

	ticket, err := h.tickets.UpdatePriority(c.Context(), caller, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Resolve handles POST /api/tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	ticket, err := h.tickets.ResolveTicket(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Close handles POST /api/tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	ticket, err := h.tickets.CloseTicket(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Reopen handles POST /api/tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	caller, _ := auth.CallerFromContext(c)
	ticket, err := h.tickets.ReopenTicket(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Delete handles DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.DeleteTicket(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ByStatus handles GET /api/tickets/status/:status.
func (h *TicketsHandler) ByStatus(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	tickets, err := h.tickets.FindByStatus(c.Context(), domain.TicketStatus(c.Params("status")), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// ByCategory handles GET /api/tickets/category/:category.
func (h *TicketsHandler) ByCategory(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	tickets, err := h.tickets.FindByCategory(c.Context(), domain.TicketCategory(c.Params("category")), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Search handles GET /api/tickets/search?q=.
func (h *TicketsHandler) Search(c *fiber.Ctx) error {
	keyword := c.Query("q")
	if keyword == "" {
		return apperrors.NewValidationError("q query required", nil)
	}
	limit, offset := pagination(c)
	tickets, err := h.tickets.SearchByKeyword(c.Context(), keyword, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Unassigned handles GET /api/tickets/unassigned.
func (h *TicketsHandler) Unassigned(c *fiber.Ctx) error {
	tickets, err := h.tickets.FindUnassignedOpen(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Urgent handles GET /api/tickets/urgent.
func (h *TicketsHandler) Urgent(c *fiber.Ctx) error {
	tickets, err := h.tickets.FindUrgentActive(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// Mine handles GET /api/tickets/mine for the caller's created tickets.
func (h *TicketsHandler) Mine(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	tickets, err := h.tickets.FindByCreator(c.Context(), caller.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

// AssignedToMe handles GET /api/tickets/assigned-to-me.
func (h *TicketsHandler) AssignedToMe(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	tickets, err := h.tickets.FindByAssignee(c.Context(), caller.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
