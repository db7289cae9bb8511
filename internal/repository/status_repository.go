package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// StatusRepository manages ticket statuses.
type StatusRepository interface {
	CountLocked(ctx context.Context, key domain.StatusKey) (int64, error)
	Create(ctx context.Context, status *domain.TicketStatus) error
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository builds the repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) CountLocked(ctx context.Context, key domain.StatusKey) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM ticket_statuses
        WHERE name=$1 AND uid=$2 AND is_locked = TRUE`
	var count int64
	err := r.pool.QueryRow(ctx, query, key.Name, key.UID).Scan(&count)
	return count, err
}

func (r *statusRepository) Create(ctx context.Context, status *domain.TicketStatus) error {
	const query = `
        INSERT INTO ticket_statuses (name, html_color, uid, sort_order, sla_timer, is_resolved, is_locked)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id::text, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		status.Name,
		status.HTMLColor,
		status.UID,
		status.Order,
		status.SLATimer,
		status.IsResolved,
		status.IsLocked,
	).Scan(&status.ID, &status.CreatedAt, &status.UpdatedAt)
}
