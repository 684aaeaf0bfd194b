package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"membership-portal/backend/internal/member/domain"
	userdomain "membership-portal/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ReplaceMembers swaps the members table for the given rows in one transaction.
func (r *PostgresRepository) ReplaceMembers(ctx context.Context, members []domain.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM members`); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	if len(members) > 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO members (first_name, surname, cid, email, login, order_no, member_type)
			VALUES (:first_name, :surname, :cid, :email, :login, :order_no, :member_type)`,
			members)
		if err != nil {
			return fmt.Errorf("insert members: %w", err)
		}
	}
	return tx.Commit()
}

// ReplaceTeamMembers swaps the team_members table for the given rows in one transaction.
func (r *PostgresRepository) ReplaceTeamMembers(ctx context.Context, members []domain.TeamMember) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_members`); err != nil {
		return fmt.Errorf("clear team_members: %w", err)
	}
	if len(members) > 0 {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO team_members (first_name, surname, cid, email, login)
			VALUES (:first_name, :surname, :cid, :email, :login)`,
			members)
		if err != nil {
			return fmt.Errorf("insert team_members: %w", err)
		}
	}
	return tx.Commit()
}

// TierFor resolves a cid/login pair against the synced records. Both
// identifiers must match the same row.
func (r *PostgresRepository) TierFor(ctx context.Context, cid, login string) (int16, error) {
	var isTeam bool
	err := r.db.GetContext(ctx, &isTeam,
		`SELECT EXISTS (SELECT 1 FROM team_members WHERE cid = $1 AND login = $2)`, cid, login)
	if err != nil {
		return userdomain.TierGuest, err
	}
	if isTeam {
		return userdomain.TierTeam, nil
	}

	var isMember bool
	err = r.db.GetContext(ctx, &isMember,
		`SELECT EXISTS (SELECT 1 FROM members WHERE cid = $1 AND login = $2)`, cid, login)
	if err != nil {
		return userdomain.TierGuest, err
	}
	if isMember {
		return userdomain.TierMember, nil
	}
	return userdomain.TierGuest, nil
}
