package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// PriorityRepository manages ticket priorities.
type PriorityRepository interface {
	GetByMigrationNum(ctx context.Context, num int) (*domain.Priority, error)
	Create(ctx context.Context, priority *domain.Priority) error
	// ListDefaults returns default priorities ordered by migration number.
	ListDefaults(ctx context.Context) ([]domain.Priority, error)
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

const priorityColumns = `id::text, name, html_color, overdue_in, is_default, migration_num, created_at, updated_at`

func (r *priorityRepository) GetByMigrationNum(ctx context.Context, num int) (*domain.Priority, error) {
	query := `SELECT ` + priorityColumns + ` FROM priorities WHERE migration_num=$1 LIMIT 1`
	priority, err := scanPriority(r.pool.QueryRow(ctx, query, num))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return priority, nil
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	const query = `
        INSERT INTO priorities (name, html_color, overdue_in, is_default, migration_num)
        VALUES ($1,$2,$3,$4,NULLIF($5, 0))
        RETURNING id::text, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		priority.Name,
		priority.HTMLColor,
		priority.OverdueIn,
		priority.Default,
		priority.MigrationNum,
	).Scan(&priority.ID, &priority.CreatedAt, &priority.UpdatedAt)
}

func (r *priorityRepository) ListDefaults(ctx context.Context) ([]domain.Priority, error) {
	query := `SELECT ` + priorityColumns + ` FROM priorities
        WHERE is_default = TRUE
        ORDER BY migration_num NULLS LAST, created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		priority, err := scanPriority(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *priority)
	}
	return result, rows.Err()
}

func scanPriority(row pgx.Row) (*domain.Priority, error) {
	var (
		p            domain.Priority
		migrationNum *int
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.HTMLColor,
		&p.OverdueIn,
		&p.Default,
		&migrationNum,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if migrationNum != nil {
		p.MigrationNum = *migrationNum
	}
	return &p, nil
}
