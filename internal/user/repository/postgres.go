package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"membership-portal/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByShortcode returns the user with the given shortcode, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByShortcode(ctx context.Context, shortcode string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE shortcode = $1`, shortcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create persists the user. The user must have ID set; it is not assigned here.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, first_name, surname, shortcode, cid, password_hash, is_admin, tier, created_at)
		VALUES (:id, :first_name, :surname, :shortcode, :cid, :password_hash, :is_admin, :tier, :created_at)`, u)
	return err
}

// SetRefreshJTI overwrites the user's current refresh id. nil clears it.
func (r *PostgresRepository) SetRefreshJTI(ctx context.Context, userID uuid.UUID, jti *uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET refresh_jti = $1 WHERE id = $2`, jti, userID)
	return err
}

// RotateRefreshJTI performs the compare-and-swap rotation as a single UPDATE.
// Two concurrent rotations presenting the same jti cannot both match the
// WHERE clause, so exactly one observes rows-affected = 1.
func (r *PostgresRepository) RotateRefreshJTI(ctx context.Context, userID, oldJTI, newJTI uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_jti = $1 WHERE id = $2 AND refresh_jti = $3`,
		newJTI, userID, oldJTI)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// TouchLastLogin records a successful login time. Callers treat failures as
// best-effort.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, userID)
	return err
}

// CreatePending persists a registration awaiting verification.
func (r *PostgresRepository) CreatePending(ctx context.Context, p *domain.PendingUser) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO pending_users (id, verification_token, first_name, surname, shortcode, cid, password_hash, created_at)
		VALUES (:id, :verification_token, :first_name, :surname, :shortcode, :cid, :password_hash, :created_at)`, p)
	return err
}

// GetPendingByToken returns the pending registration for the verification
// token, or nil if not found.
func (r *PostgresRepository) GetPendingByToken(ctx context.Context, token uuid.UUID) (*domain.PendingUser, error) {
	var p domain.PendingUser
	err := r.db.GetContext(ctx, &p, `SELECT * FROM pending_users WHERE verification_token = $1`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// PromotePending moves the pending row into users with the given tier. The
// delete and insert run as one statement so a crash cannot leave both rows.
func (r *PostgresRepository) PromotePending(ctx context.Context, token uuid.UUID, tier int16) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		WITH promoted AS (
			DELETE FROM pending_users WHERE verification_token = $1 RETURNING *
		)
		INSERT INTO users (id, first_name, surname, shortcode, cid, password_hash, is_admin, tier, created_at)
		SELECT id, first_name, surname, shortcode, cid, password_hash, false, $2, created_at FROM promoted`,
		token, tier)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
