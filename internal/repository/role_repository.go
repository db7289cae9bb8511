package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// RoleRepository encapsulates role and role order persistence.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, role *domain.Role) error
	GetOrder(ctx context.Context) (*domain.RoleOrder, error)
	CreateOrder(ctx context.Context, order *domain.RoleOrder) error
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = `
        SELECT id::text, name, description, grants, created_at, updated_at
        FROM roles WHERE name=$1`
	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Grants,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `
        SELECT id::text, name, description, grants, created_at, updated_at
        FROM roles ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.Grants, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (name, description, grants)
        VALUES ($1,$2,$3)
        RETURNING id::text, created_at, updated_at`
	grants := role.Grants
	if grants == nil {
		grants = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		role.Name,
		role.Description,
		grants,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) GetOrder(ctx context.Context) (*domain.RoleOrder, error) {
	const query = `
        SELECT id::text, role_ids::text[], created_at, updated_at
        FROM role_orders LIMIT 1`
	var order domain.RoleOrder
	if err := r.pool.QueryRow(ctx, query).Scan(
		&order.ID,
		&order.Order,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &order, nil
}

func (r *roleRepository) CreateOrder(ctx context.Context, order *domain.RoleOrder) error {
	const query = `
        INSERT INTO role_orders (role_ids)
        VALUES ($1::uuid[])
        RETURNING id::text, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, order.Order).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}
