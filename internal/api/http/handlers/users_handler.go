package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("email, password, first_name, last_name required", nil)
	}

	user, err := h.users.CreateUser(c.Context(), service.UserCreateInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Site:       req.Site,
		Role:       req.Role,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return apperrors.NewValidationError("email, first_name, last_name required", nil)
	}

	user, err := h.users.UpdateUser(c.Context(), c.Params("id"), service.UserUpdateInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Site:       req.Site,
		Role:       req.Role,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := repository.UserFilter{}
	if dept := c.Query("department"); dept != "" {
		d := domain.Department(dept)
		filter.Department = &d
	}
	if site := c.Query("site"); site != "" {
		s := domain.Site(site)
		filter.Site = &s
	}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filter.Role = &r
	}
	filter.Limit, filter.Offset = pagination(c)
	return h.list(c, filter)
}

// Search handles GET /api/users/search?name=.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return apperrors.NewValidationError("name query required", nil)
	}
	limit, offset := pagination(c)
	users, err := h.users.SearchByName(c.Context(), name, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// ByDepartment handles GET /api/users/department/:department.
func (h *UsersHandler) ByDepartment(c *fiber.Ctx) error {
	dept := domain.Department(c.Params("department"))
	filter := repository.UserFilter{Department: &dept}
	filter.Limit, filter.Offset = pagination(c)
	return h.list(c, filter)
}

// BySite handles GET /api/users/site/:site.
func (h *UsersHandler) BySite(c *fiber.Ctx) error {
	site := domain.Site(c.Params("site"))
	filter := repository.UserFilter{Site: &site}
	filter.Limit, filter.Offset = pagination(c)
	return h.list(c, filter)
}

// ByRole handles GET /api/users/role/:role.
func (h *UsersHandler) ByRole(c *fiber.Ctx) error {
	role := domain.Role(c.Params("role"))
	filter := repository.UserFilter{Role: &role}
	filter.Limit, filter.Offset = pagination(c)
	return h.list(c, filter)
}

// Active handles GET /api/users/active.
func (h *UsersHandler) Active(c *fiber.Ctx) error {
	return h.listByActivity(c, true)
}

// Inactive handles GET /api/users/inactive.
func (h *UsersHandler) Inactive(c *fiber.Ctx) error {
	return h.listByActivity(c, false)
}

// Technicians handles GET /api/users/technicians/:department.
func (h *UsersHandler) Technicians(c *fiber.Ctx) error {
	dept := domain.Department(c.Params("department"))
	users, err := h.users.ListTechniciansByDepartment(c.Context(), dept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Activate handles POST /api/users/:id/activate.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	user, err := h.users.ActivateUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Deactivate handles POST /api/users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	user, err := h.users.DeactivateUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Profile handles GET /api/users/profile for the caller.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(caller)})
}

// Statistics handles GET /api/users/statistics.
func (h *UsersHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.users.Statistics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func (h *UsersHandler) list(c *fiber.Ctx, filter repository.UserFilter) error {
	users, err := h.users.ListUsers(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

func (h *UsersHandler) listByActivity(c *fiber.Ctx, active bool) error {
	filter := repository.UserFilter{Active: &active}
	filter.Limit, filter.Offset = pagination(c)
	return h.list(c, filter)
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	return pageSize, (page - 1) * pageSize
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	val := c.Query(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
