package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bootstrap/internal/observability"
	"github.com/spec-kit/ticket-bootstrap/pkg/util"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness, readiness and bootstrap probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. A nil postgres pinger
// means the service runs on the in-memory store.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
		metrics:     metrics,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness: reachable dependencies and a finished bootstrap run.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	depStatus := map[string]any{}
	ready := true

	check := func(name string, p Pinger) {
		if p == nil {
			depStatus[name] = "disabled"
			return
		}
		if err := p.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
			return
		}
		depStatus[name] = "ok"
	}
	check("postgres", h.postgres)
	check("redis", h.redis)

	report := h.metrics.Report()
	switch {
	case !report.Completed:
		depStatus["bootstrap"] = "running"
		ready = false
	case report.Failed:
		depStatus["bootstrap"] = "failed"
	default:
		depStatus["bootstrap"] = "ok"
	}

	if !ready {
		return util.NewUnavailable("one or more dependencies unavailable", depStatus)
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": depStatus,
	})
}

// Bootstrap returns the per-step outcome of the last bootstrap run.
func (h *HealthHandler) Bootstrap(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Report())
}
