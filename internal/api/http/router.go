package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/koruflicks/support-service/internal/api/http/handlers"
	"github.com/koruflicks/support-service/internal/identity"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Auth    *identity.Middleware
}

// RegisterRoutes wires HTTP routes. Submission is the only ticket route
// open to anonymous callers; everything else sits behind the auth gate.
// Fixed paths are registered before the :id parameter routes so they
// match first.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("/submit", cfg.Tickets.Submit)

	tickets.Get("/", cfg.Auth.Require, cfg.Tickets.ListAll)
	tickets.Get("/user/:userId", cfg.Auth.Require, cfg.Tickets.ListByUser)
	tickets.Get("/:id", cfg.Auth.Require, cfg.Tickets.Get)
	tickets.Patch("/:id/status", cfg.Auth.Require, cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/reply", cfg.Auth.Require, cfg.Tickets.AddReply)
	tickets.Delete("/:id", cfg.Auth.Require, cfg.Tickets.Delete)
}
