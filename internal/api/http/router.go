package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/validate", cfg.Auth.Validate)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/profile", cfg.Users.Profile)
	users.Get("/statistics", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.Statistics)
	users.Get("/search", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.Search)
	users.Get("/active", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.Active)
	users.Get("/inactive", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.Inactive)
	users.Get("/technicians/:department", auth.RequireCapability(auth.CapabilityListTechnicians, ""), cfg.Users.Technicians)
	users.Get("/department/:department", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.ByDepartment)
	users.Get("/site/:site", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.BySite)
	users.Get("/role/:role", auth.RequireCapability(auth.CapabilityAdministerUsers, ""), cfg.Users.ByRole)
	users.Get("", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.List)
	users.Post("", auth.RequireCapability(auth.CapabilityManageUsers, ""), cfg.Users.Create)
	users.Get("/:id", auth.RequireCapability(auth.CapabilityViewUser, "id"), cfg.Users.Get)
	users.Put("/:id", auth.RequireCapability(auth.CapabilityUpdateUser, "id"), cfg.Users.Update)
	users.Delete("/:id", auth.RequireCapability(auth.CapabilityAdministerUsers, ""), cfg.Users.Delete)
	users.Post("/:id/activate", auth.RequireCapability(auth.CapabilityAdministerUsers, ""), cfg.Users.Activate)
	users.Post("/:id/deactivate", auth.RequireCapability(auth.CapabilityAdministerUsers, ""), cfg.Users.Deactivate)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/mine", cfg.Tickets.Mine)
	tickets.Get("/assigned-to-me", auth.RequireCapability(auth.CapabilityWorkTicket, ""), cfg.Tickets.AssignedToMe)
	tickets.Get("/unassigned", auth.RequireCapability(auth.CapabilityViewTickets, ""), cfg.Tickets.Unassigned)
	tickets.Get("/urgent", auth.RequireCapability(auth.CapabilityViewTickets, ""), cfg.Tickets.Urgent)
	tickets.Get("/search", auth.RequireCapability(auth.CapabilityViewTickets, ""), cfg.Tickets.Search)
	tickets.Get("/status/:status", auth.RequireCapability(auth.CapabilityViewTickets, ""), cfg.Tickets.ByStatus)
	tickets.Get("/category/:category", auth.RequireCapability(auth.CapabilityViewTickets, ""), cfg.Tickets.ByCategory)
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("", auth.RequireCapability(auth.CapabilityCreateTicket, ""), cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Delete("/:id", auth.RequireCapability(auth.CapabilityDeleteTicket, ""), cfg.Tickets.Delete)
	tickets.Post("/:id/assign", auth.RequireCapability(auth.CapabilityAssignTicket, ""), cfg.Tickets.Assign)
	tickets.Post("/:id/unassign", auth.RequireCapability(auth.CapabilityAssignTicket, ""), cfg.Tickets.Unassign)
	tickets.Post("/:id/auto-assign", auth.RequireCapability(auth.CapabilityAssignTicket, ""), cfg.Tickets.AutoAssign)
	tickets.Put("/:id/status", auth.RequireCapability(auth.CapabilityWorkTicket, ""), cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/priority", auth.RequireCapability(auth.CapabilityWorkTicket, ""), cfg.Tickets.UpdatePriority)
	tickets.Post("/:id/resolve", auth.RequireCapability(auth.CapabilityWorkTicket, ""), cfg.Tickets.Resolve)
	tickets.Post("/:id/close", auth.RequireCapability(auth.CapabilityWorkTicket, ""), cfg.Tickets.Close)
	tickets.Post("/:id/reopen", auth.RequireCapability(auth.CapabilityWorkTicket, ""), cfg.Tickets.Reopen)

	catalog := api.Group("/catalog", cfg.AuthMiddleware.Handle)
	catalog.Get("", cfg.Catalog.List)
	catalog.Get("/:id", cfg.Catalog.Get)
	catalog.Post("", auth.RequireCapability(auth.CapabilityManageCatalog, ""), cfg.Catalog.Create)
	catalog.Put("/:id", auth.RequireCapability(auth.CapabilityManageCatalog, ""), cfg.Catalog.Update)
}
