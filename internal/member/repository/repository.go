// Package repository persists synced membership records.
package repository

import (
	"context"

	"membership-portal/backend/internal/member/domain"
)

// Repository stores membership records and answers tier lookups.
type Repository interface {
	// ReplaceMembers swaps the full members table for the given rows in one
	// transaction.
	ReplaceMembers(ctx context.Context, members []domain.Member) error
	// ReplaceTeamMembers swaps the full team_members table for the given rows
	// in one transaction.
	ReplaceTeamMembers(ctx context.Context, members []domain.TeamMember) error
	// TierFor returns the membership tier for a cid/login pair: team member,
	// member, or guest.
	TierFor(ctx context.Context, cid, login string) (int16, error)
}
