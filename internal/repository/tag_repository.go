package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// TagRepository manages ticket tags.
type TagRepository interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Save(ctx context.Context, tag *domain.Tag) error
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository builds the repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	const query = `
        SELECT id::text, name, normalized, created_at, updated_at
        FROM ticket_tags ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Normalized, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

// Save upserts the tag by id, inserting it when the id is empty.
func (r *tagRepository) Save(ctx context.Context, tag *domain.Tag) error {
	if tag.ID == "" {
		const insert = `
            INSERT INTO ticket_tags (name, normalized)
            VALUES ($1,$2)
            RETURNING id::text, created_at, updated_at`
		return r.pool.QueryRow(ctx, insert, tag.Name, tag.Normalized).
			Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	}
	const update = `
        UPDATE ticket_tags SET name=$1, normalized=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, update, tag.Name, tag.Normalized, tag.ID).Scan(&tag.UpdatedAt); err != nil {
		return mapNoRows(err)
	}
	return nil
}
