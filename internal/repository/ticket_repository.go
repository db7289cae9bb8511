package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketRepository exposes the ticket operations needed by startup migrations.
// The priority column is jsonb: legacy rows hold a number, migrated rows hold
// the priority id as a string.
type TicketRepository interface {
	// CountLegacyPriority counts tickets whose priority is the bare number value.
	CountLegacyPriority(ctx context.Context, value int) (int64, error)
	// ReplaceLegacyPriority points every ticket holding the bare number value at
	// priorityID and returns the number of rows changed.
	ReplaceLegacyPriority(ctx context.Context, value int, priorityID string) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) CountLegacyPriority(ctx context.Context, value int) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE jsonb_typeof(priority) = 'number' AND priority = to_jsonb($1::int)`
	var count int64
	err := r.pool.QueryRow(ctx, query, value).Scan(&count)
	return count, err
}

func (r *ticketRepository) ReplaceLegacyPriority(ctx context.Context, value int, priorityID string) (int64, error) {
	const query = `
        UPDATE tickets SET priority = to_jsonb($2::text), updated_at = NOW()
        WHERE jsonb_typeof(priority) = 'number' AND priority = to_jsonb($1::int)`
	cmd, err := r.pool.Exec(ctx, query, value, priorityID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
