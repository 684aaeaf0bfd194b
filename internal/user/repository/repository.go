package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"membership-portal/backend/internal/user/domain"
)

// Repository defines persistence for users and pending registrations.
type Repository interface {
	GetByShortcode(ctx context.Context, shortcode string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// SetRefreshJTI overwrites the user's current refresh id unconditionally.
	// Passing nil clears it (logout). Overwriting invalidates any previously
	// issued refresh token for the user.
	SetRefreshJTI(ctx context.Context, userID uuid.UUID, jti *uuid.UUID) error
	// RotateRefreshJTI swaps oldJTI for newJTI only if oldJTI is still the
	// user's current refresh id, as a single atomic update. Returns false when
	// the stored id no longer matches (rotation lost a race or the token was
	// already used).
	RotateRefreshJTI(ctx context.Context, userID, oldJTI, newJTI uuid.UUID) (bool, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error

	CreatePending(ctx context.Context, p *domain.PendingUser) error
	GetPendingByToken(ctx context.Context, token uuid.UUID) (*domain.PendingUser, error)
	// PromotePending moves the pending registration identified by token into
	// users with the given tier, deleting the pending row in the same
	// transaction. Returns false if no pending row matched.
	PromotePending(ctx context.Context, token uuid.UUID, tier int16) (bool, error)
}
