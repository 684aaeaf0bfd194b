// Package user implements account registration and verification.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"membership-portal/backend/internal/audit"
	"membership-portal/backend/internal/db"
	"membership-portal/backend/internal/security"
	"membership-portal/backend/internal/user/domain"
)

var (
	// ErrValidation wraps a rejected registration field.
	ErrValidation = errors.New("invalid registration")
	// ErrShortcodeTaken means the shortcode already has an account or a
	// pending registration.
	ErrShortcodeTaken = errors.New("shortcode already registered")
	// ErrInvalidVerification means the verification token matched no pending
	// registration.
	ErrInvalidVerification = errors.New("invalid verification token")
)

// Store is the user repository surface the registration service needs.
type Store interface {
	Create(ctx context.Context, u *domain.User) error
	CreatePending(ctx context.Context, p *domain.PendingUser) error
	GetPendingByToken(ctx context.Context, token uuid.UUID) (*domain.PendingUser, error)
	PromotePending(ctx context.Context, token uuid.UUID, tier int16) (bool, error)
}

// TierLookup resolves a cid/login pair to a membership tier from the synced
// records.
type TierLookup interface {
	TierFor(ctx context.Context, cid, login string) (int16, error)
}

// RegistrationResult reports how a registration was handled. Verified means
// the account exists and can log in; otherwise the caller must present
// VerificationToken to complete it.
type RegistrationResult struct {
	UserID            uuid.UUID
	Verified          bool
	VerificationToken uuid.UUID
}

// Service creates accounts directly for recognized members and parks
// everyone else as a pending registration behind a verification token.
type Service struct {
	store  Store
	tiers  TierLookup
	hasher *security.Hasher
	audit  audit.AuditLogger
	log    *slog.Logger
}

func NewService(store Store, tiers TierLookup, hasher *security.Hasher, auditLog audit.AuditLogger, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, tiers: tiers, hasher: hasher, audit: auditLog, log: log}
}

// Register validates and persists a registration. The membership tier is
// resolved from the synced records at registration time; a recognized member
// gets a live account immediately, everyone else a pending row.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (*RegistrationResult, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := s.hasher.Hash([]byte(reg.Password))
	if err != nil {
		return nil, fmt.Errorf("user: hash password: %w", err)
	}

	tier, err := s.tiers.TierFor(ctx, reg.CID, reg.Shortcode)
	if err != nil {
		return nil, fmt.Errorf("user: resolve tier: %w", err)
	}

	now := time.Now().UTC()
	if tier != domain.TierGuest {
		u := &domain.User{
			ID:           uuid.New(),
			FirstName:    reg.FirstName,
			Surname:      reg.Surname,
			Shortcode:    reg.Shortcode,
			CID:          reg.CID,
			PasswordHash: hash,
			Tier:         tier,
			CreatedAt:    now,
		}
		if err := s.store.Create(ctx, u); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, ErrShortcodeTaken
			}
			return nil, fmt.Errorf("user: create: %w", err)
		}
		s.logEvent(ctx, &u.ID, "")
		return &RegistrationResult{UserID: u.ID, Verified: true}, nil
	}

	p := &domain.PendingUser{
		ID:                uuid.New(),
		VerificationToken: uuid.New(),
		FirstName:         reg.FirstName,
		Surname:           reg.Surname,
		Shortcode:         reg.Shortcode,
		CID:               reg.CID,
		PasswordHash:      hash,
		CreatedAt:         now,
	}
	if err := s.store.CreatePending(ctx, p); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrShortcodeTaken
		}
		return nil, fmt.Errorf("user: create pending: %w", err)
	}
	s.logEvent(ctx, nil, "pending verification")
	return &RegistrationResult{UserID: p.ID, VerificationToken: p.VerificationToken}, nil
}

// Verify promotes the pending registration behind token into a live account.
// The tier is re-checked at verification time, so a membership purchased
// after registering takes effect here.
func (s *Service) Verify(ctx context.Context, token uuid.UUID) error {
	pending, err := s.store.GetPendingByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("user: look up pending: %w", err)
	}
	if pending == nil {
		return ErrInvalidVerification
	}

	tier, err := s.tiers.TierFor(ctx, pending.CID, pending.Shortcode)
	if err != nil {
		return fmt.Errorf("user: resolve tier: %w", err)
	}

	promoted, err := s.store.PromotePending(ctx, token, tier)
	if err != nil {
		return fmt.Errorf("user: promote pending: %w", err)
	}
	if !promoted {
		// The pending row vanished between lookup and promotion.
		return ErrInvalidVerification
	}
	s.logEvent(ctx, &pending.ID, "verified")
	return nil
}

func (s *Service) logEvent(ctx context.Context, userID *uuid.UUID, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, audit.ActionUserRegistered, "user", metadata)
	}
}
