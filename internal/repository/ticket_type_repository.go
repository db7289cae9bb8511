package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// TicketTypeRepository manages ticket types and their allowed priorities.
type TicketTypeRepository interface {
	List(ctx context.Context) ([]domain.TicketType, error)
	// SetPriorities replaces the priority list of a ticket type.
	SetPriorities(ctx context.Context, typeID string, priorityIDs []string) error
}

type ticketTypeRepository struct {
	pool *pgxpool.Pool
}

// NewTicketTypeRepository builds the repository.
func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &ticketTypeRepository{pool: pool}
}

func (r *ticketTypeRepository) List(ctx context.Context) ([]domain.TicketType, error) {
	const query = `
        SELECT t.id::text, t.name, t.created_at, t.updated_at,
               COALESCE(array_agg(tp.priority_id::text ORDER BY tp.position)
                        FILTER (WHERE tp.priority_id IS NOT NULL), '{}')
        FROM ticket_types t
        LEFT JOIN ticket_type_priorities tp ON tp.ticket_type_id = t.id
        GROUP BY t.id
        ORDER BY t.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.CreatedAt, &tt.UpdatedAt, &tt.Priorities); err != nil {
			return nil, err
		}
		result = append(result, tt)
	}
	return result, rows.Err()
}

func (r *ticketTypeRepository) SetPriorities(ctx context.Context, typeID string, priorityIDs []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ticket_type_priorities WHERE ticket_type_id=$1`, typeID); err != nil {
			return err
		}
		for i, id := range priorityIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO ticket_type_priorities (ticket_type_id, priority_id, position) VALUES ($1,$2,$3)`,
				typeID, id, i,
			); err != nil {
				return err
			}
		}
		cmd, err := tx.Exec(ctx, `UPDATE ticket_types SET updated_at=NOW() WHERE id=$1`, typeID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
