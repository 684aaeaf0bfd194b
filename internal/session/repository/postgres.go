package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"membership-portal/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO club_sessions (id, title, description, location, tier, start_time, end_time,
			recurrence, recurrence_end, user_limit, created_by, created_at)
		VALUES (:id, :title, :description, :location, :tier, :start_time, :end_time,
			:recurrence, :recurrence_end, :user_limit, :created_by, :created_at)`, s)
	return err
}

// ListUpcoming returns sessions ending after the given time whose tier is at
// most maxTier, soonest first.
func (r *PostgresRepository) ListUpcoming(ctx context.Context, after time.Time, maxTier int16) ([]*domain.Session, error) {
	var out []*domain.Session
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM club_sessions
		WHERE end_time > $1 AND tier <= $2
		ORDER BY start_time ASC`, after, maxTier)
	if err != nil {
		return nil, err
	}
	return out, nil
}
