package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ticket-bootstrap/internal/config"
	"github.com/spec-kit/ticket-bootstrap/internal/domain"
	"github.com/spec-kit/ticket-bootstrap/internal/events"
	"github.com/spec-kit/ticket-bootstrap/internal/observability"
	"github.com/spec-kit/ticket-bootstrap/internal/repository/memory"
	"github.com/spec-kit/ticket-bootstrap/internal/worker"
)

type harness struct {
	b          *Bootstrapper
	mem        *memory.Store
	fs         afero.Fs
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

func testOptions() Options {
	return Options{
		Root:     "/srv/helpdesk",
		Timezone: "America/New_York",
		Search: config.SearchConfig{
			Host: "http://localhost",
			Port: 9200,
		},
		DatabaseVersion: "16.2",
		ToolsBaseURL:    "http://tools.invalid/",
		Platform:        "linux",
	}
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	pool, err := worker.NewPool(4, logger)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Release(time.Second) })

	h := &harness{
		mem:        memory.NewStore(),
		fs:         afero.NewMemMapFs(),
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	h.b = New(Dependencies{
		Store:      h.mem.Repositories(),
		Pool:       pool,
		Fs:         h.fs,
		Dispatcher: h.dispatcher,
		Metrics:    h.metrics,
		Logger:     logger,
	}, opts)
	return h
}

func (h *harness) run(t *testing.T) *Result {
	t.Helper()
	res, err := h.b.Run(context.Background())
	require.NoError(t, err)
	return res
}

func settingValue(t *testing.T, mem *memory.Store, name string) any {
	t.Helper()
	for _, s := range mem.Settings() {
		if s.Name == name {
			return s.Value
		}
	}
	t.Fatalf("setting %s not found", name)
	return nil
}

func hasSetting(mem *memory.Store, name string) bool {
	for _, s := range mem.Settings() {
		if s.Name == name {
			return true
		}
	}
	return false
}

func roleID(t *testing.T, mem *memory.Store, name string) string {
	t.Helper()
	for _, r := range mem.Roles() {
		if r.Name == name {
			return r.ID
		}
	}
	t.Fatalf("role %s not found", name)
	return ""
}

func priorityByNum(t *testing.T, mem *memory.Store, num int) domain.Priority {
	t.Helper()
	for _, p := range mem.Priorities() {
		if p.MigrationNum == num {
			return p
		}
	}
	t.Fatalf("priority %d not found", num)
	return domain.Priority{}
}
