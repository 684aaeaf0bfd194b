// Package auth implements login, refresh-token rotation, and logout on top of
// the security primitives and the user store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"membership-portal/backend/internal/audit"
	"membership-portal/backend/internal/security"
	userdomain "membership-portal/backend/internal/user/domain"
)

// Randomized delay applied on every failed credential check, masking
// "unknown user" and "wrong password" as one indistinguishable signal.
const (
	failDelayMin = 100 * time.Millisecond
	failDelayMax = 500 * time.Millisecond
)

// UserStore is the minimal user repository needed by the auth service.
type UserStore interface {
	GetByShortcode(ctx context.Context, shortcode string) (*userdomain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error)
	SetRefreshJTI(ctx context.Context, userID uuid.UUID, jti *uuid.UUID) error
	RotateRefreshJTI(ctx context.Context, userID, oldJTI, newJTI uuid.UUID) (bool, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// TokenPair holds the outcome of Login or Refresh. RefreshToken is empty when
// the caller did not ask for a long session.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// Service implements password login with uniform failure timing, refresh
// rotation with single-use invalidation, and logout.
type Service struct {
	users  UserStore
	hasher *security.Hasher
	tokens *security.TokenProvider
	audit  audit.AuditLogger
	log    *slog.Logger

	// sleep is swapped out in tests to keep them fast.
	sleep func(ctx context.Context, d time.Duration)
}

// NewService returns a Service with the given dependencies. auditLog may be
// nil to disable audit events; log may be nil to use the default logger.
func NewService(users UserStore, hasher *security.Hasher, tokens *security.TokenProvider, auditLog audit.AuditLogger, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		audit:  auditLog,
		log:    log,
		sleep:  sleepCtx,
	}
}

// Login authenticates shortcode/password and returns an access token, plus a
// refresh token when keepLogin is set. Every credential failure exits through
// failSlow so the delay cannot be forgotten on one path.
func (s *Service) Login(ctx context.Context, shortcode, password string, keepLogin bool) (*TokenPair, error) {
	if shortcode == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByShortcode(ctx, shortcode)
	if err != nil {
		return nil, fmt.Errorf("auth: look up user: %w", err)
	}
	if user == nil {
		// Burn a comparable bcrypt comparison so an absent shortcode costs
		// the same as a wrong password.
		s.hasher.CompareDummy([]byte(password))
		s.logEvent(ctx, nil, audit.ActionLoginFailure, "auth", "unknown shortcode")
		return nil, s.failSlow(ctx, ErrWrongCredentials)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, []byte(password))
	if err != nil {
		// Malformed stored hash is an operational fault, not a client error.
		s.log.Error("stored password hash is malformed",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))
		return nil, fmt.Errorf("auth: verify password: %w", err)
	}
	if !ok {
		s.logEvent(ctx, &user.ID, audit.ActionLoginFailure, "auth", "wrong password")
		return nil, s.failSlow(ctx, ErrWrongCredentials)
	}

	access, accessExp, err := s.tokens.IssueAccess(user.Shortcode, user.ID, user.DisplayName(), user.Tier, user.Admin)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token: %v", ErrTokenCreation, err)
	}
	pair := &TokenPair{AccessToken: access, AccessExpiresAt: accessExp}

	if keepLogin {
		// The new jti overwrites any previous one, invalidating earlier
		// refresh tokens for this user. It must be durable before the token
		// is handed out; a failed write fails the whole login.
		jti := uuid.New()
		if err := s.users.SetRefreshJTI(ctx, user.ID, &jti); err != nil {
			return nil, fmt.Errorf("%w: persist refresh id: %v", ErrTokenCreation, err)
		}
		refresh, _, err := s.tokens.IssueRefresh(user.Shortcode, user.ID, jti)
		if err != nil {
			return nil, fmt.Errorf("%w: sign refresh token: %v", ErrTokenCreation, err)
		}
		pair.RefreshToken = refresh
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to update last_login",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))
	}
	s.logEvent(ctx, &user.ID, audit.ActionLoginSuccess, "auth", "")
	return pair, nil
}

// Refresh validates the presented refresh token against server state, rotates
// the stored refresh id, and returns a new access+refresh pair. Tier and
// admin flag are re-derived from the freshly loaded user row, so role changes
// take effect without a full re-login.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrMissingCredentials
	}

	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			s.log.Info("refresh token expired")
		} else {
			s.log.Warn("refresh token rejected", slog.Any("error", err))
		}
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth: look up user: %w", err)
	}
	if user == nil {
		// A validly signed token should always reference a real identity.
		s.log.Error("refresh token references unknown user",
			slog.String("user_id", claims.UserID.String()))
		return nil, ErrTokenCreation
	}

	presented, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.RefreshJTI == nil || *user.RefreshJTI != presented {
		// Common replay case: the token was already rotated once. Reject
		// without rotating again.
		s.log.Warn("refresh token replay or stale rotation id",
			slog.String("user_id", user.ID.String()))
		s.logEvent(ctx, &user.ID, audit.ActionRefreshReplay, "auth", "")
		return nil, ErrInvalidToken
	}

	// Compare-and-swap: of two concurrent rotations presenting the same
	// token, exactly one lands the update; the loser must fail, never
	// overwrite the winner's id.
	newJTI := uuid.New()
	swapped, err := s.users.RotateRefreshJTI(ctx, user.ID, presented, newJTI)
	if err != nil {
		return nil, fmt.Errorf("%w: rotate refresh id: %v", ErrTokenCreation, err)
	}
	if !swapped {
		s.logEvent(ctx, &user.ID, audit.ActionRefreshReplay, "auth", "lost rotation race")
		return nil, ErrInvalidToken
	}

	access, accessExp, err := s.tokens.IssueAccess(user.Shortcode, user.ID, user.DisplayName(), user.Tier, user.Admin)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token: %v", ErrTokenCreation, err)
	}
	refresh, _, err := s.tokens.IssueRefresh(user.Shortcode, user.ID, newJTI)
	if err != nil {
		return nil, fmt.Errorf("%w: sign refresh token: %v", ErrTokenCreation, err)
	}

	s.logEvent(ctx, &user.ID, audit.ActionRefreshRotated, "auth", "")
	return &TokenPair{AccessToken: access, RefreshToken: refresh, AccessExpiresAt: accessExp}, nil
}

// Logout clears the user's stored refresh id so the presented refresh token
// (and any copy of it) can no longer be rotated. An invalid token is a no-op:
// there is nothing to revoke and nothing to tell the caller.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.users.SetRefreshJTI(ctx, claims.UserID, nil); err != nil {
		return fmt.Errorf("auth: clear refresh id: %w", err)
	}
	s.logEvent(ctx, &claims.UserID, audit.ActionLogout, "auth", "")
	return nil
}

// failSlow waits a uniformly random delay in [failDelayMin, failDelayMax)
// before returning err. Single exit point for all credential failures.
func (s *Service) failSlow(ctx context.Context, err error) error {
	s.sleep(ctx, failDelayMin+rand.N(failDelayMax-failDelayMin))
	return err
}

func (s *Service) logEvent(ctx context.Context, userID *uuid.UUID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, resource, metadata)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
