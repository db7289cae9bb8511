package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
	"github.com/spec-kit/ticket-bootstrap/internal/repository"
	"github.com/spec-kit/ticket-bootstrap/internal/worker"
)

// ErrPriorityUnresolved is returned when tickets hold a legacy priority
// number but no priority carries that migration number.
var ErrPriorityUnresolved = errors.New("no priority for legacy value")

// LegacyPriorityMigrator rewrites tickets whose priority is still a bare
// number so they reference the matching priority entity.
type LegacyPriorityMigrator struct {
	tickets    repository.TicketRepository
	priorities repository.PriorityRepository
	pool       *worker.Pool
	logger     *zap.Logger
}

// NewLegacyPriorityMigrator wires the migrator.
func NewLegacyPriorityMigrator(tickets repository.TicketRepository, priorities repository.PriorityRepository, pool *worker.Pool, logger *zap.Logger) *LegacyPriorityMigrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacyPriorityMigrator{
		tickets:    tickets,
		priorities: priorities,
		pool:       pool,
		logger:     logger,
	}
}

// Migrate runs one sub-migration per legacy value concurrently. A failing
// value does not stop the others; the returned error combines every failure
// ordered by legacy value, followed by any task panic.
func (m *LegacyPriorityMigrator) Migrate(ctx context.Context) error {
	errs := make([]error, len(domain.LegacyPriorities))

	g := m.pool.Group()
	for i, value := range domain.LegacyPriorities {
		g.Go(func() error {
			errs[i] = m.migrateValue(ctx, value)
			return nil
		})
	}
	waitErr := g.Wait()
	return multierr.Combine(append(errs, waitErr)...)
}

func (m *LegacyPriorityMigrator) migrateValue(ctx context.Context, value int) error {
	n, err := m.tickets.CountLegacyPriority(ctx, value)
	if err != nil {
		return fmt.Errorf("count tickets with legacy priority %d: %w", value, err)
	}
	if n == 0 {
		return nil
	}

	priority, err := m.priorities.GetByMigrationNum(ctx, value)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w %d", ErrPriorityUnresolved, value)
	}
	if err != nil {
		return fmt.Errorf("lookup priority %d: %w", value, err)
	}

	updated, err := m.tickets.ReplaceLegacyPriority(ctx, value, priority.ID)
	if err != nil {
		return fmt.Errorf("replace legacy priority %d: %w", value, err)
	}
	m.logger.Info("migrated legacy ticket priority",
		zap.Int("legacy", value),
		zap.String("priority", priority.Name),
		zap.Int64("tickets", updated))
	return nil
}

func (b *Bootstrapper) migrateLegacyPriorities(ctx context.Context, _ *Result) error {
	return b.legacy.Migrate(ctx)
}
