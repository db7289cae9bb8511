package bootstrap

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// defaultOverdueIn is the built-in priority overdue window, in minutes.
const defaultOverdueIn = 2880

// DefaultPriorities are the built-in priorities, keyed by legacy number.
var DefaultPriorities = []domain.Priority{
	{Name: "Normal", HTMLColor: "#29b955", OverdueIn: defaultOverdueIn, Default: true, MigrationNum: domain.LegacyPriorityNormal},
	{Name: "Urgent", HTMLColor: "#8e24aa", OverdueIn: defaultOverdueIn, Default: true, MigrationNum: domain.LegacyPriorityUrgent},
	{Name: "Critical", HTMLColor: "#e65100", OverdueIn: defaultOverdueIn, Default: true, MigrationNum: domain.LegacyPriorityCritical},
}

func (b *Bootstrapper) seedPriorities(ctx context.Context, _ *Result) error {
	for _, def := range DefaultPriorities {
		_, err := b.store.Priorities.GetByMigrationNum(ctx, def.MigrationNum)
		found, err := probe(err)
		if err != nil {
			return fmt.Errorf("lookup priority %d: %w", def.MigrationNum, err)
		}
		if found {
			continue
		}

		priority := def
		if err := b.store.Priorities.Create(ctx, &priority); err != nil {
			return fmt.Errorf("create priority %s: %w", def.Name, err)
		}
		b.logger.Info("created priority", zap.String("priority", priority.Name), zap.Int("migration_num", priority.MigrationNum))
	}
	return nil
}

// backfillTypePriorities gives every ticket type without priorities the
// default priorities. Types that already have priorities are left alone.
func (b *Bootstrapper) backfillTypePriorities(ctx context.Context, _ *Result) error {
	defaults, err := b.store.Priorities.ListDefaults(ctx)
	if err != nil {
		return fmt.Errorf("list default priorities: %w", err)
	}
	if len(defaults) == 0 {
		b.logger.Debug("no default priorities; skipping ticket type backfill")
		return nil
	}
	slices.SortStableFunc(defaults, domain.CompareMigrationNum)
	ids := make([]string, 0, len(defaults))
	for _, p := range defaults {
		ids = append(ids, p.ID)
	}

	types, err := b.store.TicketTypes.List(ctx)
	if err != nil {
		return fmt.Errorf("list ticket types: %w", err)
	}
	for _, tt := range types {
		if len(tt.Priorities) > 0 {
			continue
		}
		if err := b.store.TicketTypes.SetPriorities(ctx, tt.ID, ids); err != nil {
			return fmt.Errorf("set priorities for ticket type %s: %w", tt.Name, err)
		}
		b.logger.Info("assigned default priorities", zap.String("ticket_type", tt.Name), zap.Int("count", len(ids)))
	}
	return nil
}
