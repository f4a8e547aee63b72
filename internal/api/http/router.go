package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/api/http/handlers"
	"github.com/office-hours/queue-service/internal/auth"
	"github.com/office-hours/queue-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Lifecycle      *handlers.LifecycleHandler
	Queue          *handlers.QueueHandler
	Stats          *handlers.StatsHandler
	Catalog        *handlers.CatalogHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	tickets := authed.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleStudent), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	staffOnly := auth.RequireRole(domain.RoleStaff)
	tickets.Post("/approve", staffOnly, cfg.Lifecycle.ApproveTickets)
	tickets.Post("/assign", staffOnly, cfg.Lifecycle.AssignTickets)
	tickets.Post("/resolve", staffOnly, cfg.Lifecycle.ResolveTickets)
	tickets.Post("/requeue", staffOnly, cfg.Lifecycle.RequeueTickets)
	tickets.Post("/reopen", staffOnly, cfg.Lifecycle.ReopenTickets)

	authed.Get("/queue", cfg.Queue.GetQueue)
	authed.Get("/assignments", cfg.Catalog.ListAssignments)
	authed.Get("/locations", cfg.Catalog.ListLocations)
	authed.Get("/stats/tickets", cfg.Stats.GetTicketStats)
	authed.Get("/stats/helpers/:userId", cfg.Stats.GetHelperStats)

	authed.Get("/settings", staffOnly, cfg.Settings.ListSettings)
	authed.Put("/settings/:key", staffOnly, cfg.Settings.UpdateSetting)
}
