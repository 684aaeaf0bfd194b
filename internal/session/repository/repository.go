// Package repository persists club session records.
package repository

import (
	"context"
	"time"

	"membership-portal/backend/internal/session/domain"
)

// Repository stores and lists club sessions.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// ListUpcoming returns sessions ending after the given time whose tier is
	// at most maxTier, soonest first.
	ListUpcoming(ctx context.Context, after time.Time, maxTier int16) ([]*domain.Session, error)
}
