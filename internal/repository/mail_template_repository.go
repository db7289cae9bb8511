package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// MailTemplateRepository manages notification templates.
type MailTemplateRepository interface {
	GetByName(ctx context.Context, name string) (*domain.MailTemplate, error)
	Create(ctx context.Context, tpl *domain.MailTemplate) error
}

type mailTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewMailTemplateRepository builds the repository.
func NewMailTemplateRepository(pool *pgxpool.Pool) MailTemplateRepository {
	return &mailTemplateRepository{pool: pool}
}

func (r *mailTemplateRepository) GetByName(ctx context.Context, name string) (*domain.MailTemplate, error) {
	const query = `
        SELECT id::text, name, display_name, description, subject, body, created_at, updated_at
        FROM mail_templates WHERE name=$1`
	var tpl domain.MailTemplate
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.DisplayName,
		&tpl.Description,
		&tpl.Subject,
		&tpl.Body,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &tpl, nil
}

func (r *mailTemplateRepository) Create(ctx context.Context, tpl *domain.MailTemplate) error {
	const query = `
        INSERT INTO mail_templates (name, display_name, description, subject, body)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id::text, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		tpl.Name,
		tpl.DisplayName,
		tpl.Description,
		tpl.Subject,
		tpl.Body,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.UpdatedAt)
}
