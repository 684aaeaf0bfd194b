// Package middleware holds the HTTP middleware: the access guard, request
// tracing, and the context helpers handlers use to read the caller identity.
package middleware

import (
	"context"

	"github.com/google/uuid"

	"membership-portal/backend/internal/security"
)

type contextKey int

const (
	claimsKey contextKey = iota
	clientIPKey
)

// WithClaims returns a context carrying the verified access claims.
func WithClaims(ctx context.Context, claims *security.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the access claims set by the access guard, or nil when
// the request did not pass through it.
func GetClaims(ctx context.Context) *security.AccessClaims {
	claims, _ := ctx.Value(claimsKey).(*security.AccessClaims)
	return claims
}

// GetUserID returns the authenticated user's id, or uuid.Nil when absent.
func GetUserID(ctx context.Context) uuid.UUID {
	if claims := GetClaims(ctx); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

// GetClientIP returns the client IP stored by the ClientIP middleware, or
// "unknown" when absent. Feeds the audit log.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
