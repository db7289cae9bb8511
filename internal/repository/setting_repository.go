package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// SettingRepository manages named settings.
type SettingRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Setting, error)
	Create(ctx context.Context, setting *domain.Setting) error
	List(ctx context.Context) ([]domain.Setting, error)
}

type settingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository builds the repository.
func NewSettingRepository(pool *pgxpool.Pool) SettingRepository {
	return &settingRepository{pool: pool}
}

func (r *settingRepository) GetByName(ctx context.Context, name string) (*domain.Setting, error) {
	const query = `
        SELECT id::text, name, value, created_at, updated_at
        FROM settings WHERE name=$1`
	var (
		setting domain.Setting
		raw     []byte
	)
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&setting.ID,
		&setting.Name,
		&raw,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	if err := json.Unmarshal(raw, &setting.Value); err != nil {
		return nil, fmt.Errorf("decode setting %s: %w", name, err)
	}
	return &setting, nil
}

// Create inserts the setting. The value is sent as encoded JSON so strings
// are stored as JSON strings rather than raw jsonb text.
func (r *settingRepository) Create(ctx context.Context, setting *domain.Setting) error {
	const query = `
        INSERT INTO settings (name, value)
        VALUES ($1, $2::jsonb)
        RETURNING id::text, created_at, updated_at`
	raw, err := json.Marshal(setting.Value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", setting.Name, err)
	}
	return r.pool.QueryRow(ctx, query, setting.Name, raw).
		Scan(&setting.ID, &setting.CreatedAt, &setting.UpdatedAt)
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	const query = `
        SELECT id::text, name, value, created_at, updated_at
        FROM settings ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Setting
	for rows.Next() {
		var (
			setting domain.Setting
			raw     []byte
		)
		if err := rows.Scan(&setting.ID, &setting.Name, &raw, &setting.CreatedAt, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &setting.Value); err != nil {
			return nil, fmt.Errorf("decode setting %s: %w", setting.Name, err)
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}
