package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bootstrap/internal/observability"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	pingOK   = pingFunc(func(context.Context) error { return nil })
	pingDown = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func newTestApp(postgres, redis handlers.Pinger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("ticket-bootstrap", "test", postgres, redis, metrics),
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func completedMetrics(failedStep string) *observability.Metrics {
	m := observability.NewMetrics()
	m.RecordStep("roles", time.Millisecond, nil)
	if failedStep != "" {
		m.RecordStep(failedStep, time.Millisecond, errors.New("store unavailable"))
	}
	m.MarkCompleted()
	return m
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(nil, nil, observability.NewMetrics())

	status, body := doGet(t, app, "/health/live")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "ticket-bootstrap", body["service"])
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name          string
		postgres      handlers.Pinger
		redis         handlers.Pinger
		metrics       *observability.Metrics
		wantStatus    int
		wantBootstrap string
	}{
		{name: "all ok", postgres: pingOK, redis: pingOK, metrics: completedMetrics(""), wantStatus: fiber.StatusOK, wantBootstrap: "ok"},
		{name: "memory store", redis: pingOK, metrics: completedMetrics(""), wantStatus: fiber.StatusOK, wantBootstrap: "ok"},
		{name: "failed bootstrap still ready", postgres: pingOK, redis: pingOK, metrics: completedMetrics("priorities"), wantStatus: fiber.StatusOK, wantBootstrap: "failed"},
		{name: "bootstrap running", postgres: pingOK, redis: pingOK, metrics: observability.NewMetrics(), wantStatus: fiber.StatusServiceUnavailable, wantBootstrap: "running"},
		{name: "redis down", postgres: pingOK, redis: pingDown, metrics: completedMetrics(""), wantStatus: fiber.StatusServiceUnavailable, wantBootstrap: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.postgres, tt.redis, tt.metrics)

			status, body := doGet(t, app, "/health/ready")

			require.Equal(t, tt.wantStatus, status)
			var deps map[string]any
			if status == fiber.StatusOK {
				deps = body["dependencies"].(map[string]any)
			} else {
				errBody := body["error"].(map[string]any)
				assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
				deps = errBody["details"].(map[string]any)
			}
			assert.Equal(t, tt.wantBootstrap, deps["bootstrap"])
		})
	}
}

func TestHealthBootstrapReport(t *testing.T) {
	app := newTestApp(nil, nil, completedMetrics("priorities"))

	status, body := doGet(t, app, "/health/bootstrap")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, true, body["failed"])
	steps := body["steps"].([]any)
	require.Len(t, steps, 2)
	assert.Equal(t, "priorities", steps[1].(map[string]any)["name"])
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(nil, nil, observability.NewMetrics())

	status, body := doGet(t, app, "/tickets")

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}
