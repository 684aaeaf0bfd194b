package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"membership-portal/backend/internal/admin/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an admin repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the admin. The admin must have ID set. A duplicate username
// surfaces as a unique violation for the caller to map.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Admin) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, created_at)
		VALUES (:id, :username, :password_hash, :created_at)`, a)
	return err
}

// List returns all admins, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	var out []*domain.Admin
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM admins ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}
