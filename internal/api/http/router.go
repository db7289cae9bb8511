package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bootstrap/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/bootstrap", cfg.Health.Bootstrap)
}
