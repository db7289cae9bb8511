package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// DefaultStatuses are the locked built-in ticket statuses. The SLA timer runs
// while a ticket is Open and pauses while it is Pending on the requester.
var DefaultStatuses = []domain.TicketStatus{
	{Name: "New", HTMLColor: "#29b955", UID: 0, Order: 0, IsLocked: true},
	{Name: "Open", HTMLColor: "#d32f2f", UID: 1, Order: 1, SLATimer: true, IsLocked: true},
	{Name: "Pending", HTMLColor: "#2196F3", UID: 2, Order: 2, IsLocked: true},
	{Name: "Closed", HTMLColor: "#CCCCCC", UID: 3, Order: 3, IsResolved: true, IsLocked: true},
}

func (b *Bootstrapper) seedStatuses(ctx context.Context, _ *Result) error {
	for _, def := range DefaultStatuses {
		n, err := b.store.Statuses.CountLocked(ctx, def.Key())
		if err != nil {
			return fmt.Errorf("count status %s: %w", def.Name, err)
		}
		if n > 0 {
			continue
		}

		status := def
		if err := b.store.Statuses.Create(ctx, &status); err != nil {
			return fmt.Errorf("create status %s: %w", def.Name, err)
		}
		b.logger.Info("created ticket status", zap.String("status", status.Name), zap.Int("uid", status.UID))
	}
	return nil
}
