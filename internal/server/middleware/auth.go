package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"membership-portal/backend/internal/platform/respond"
	"membership-portal/backend/internal/security"
)

// AccessValidator verifies an access token and returns its claims.
type AccessValidator interface {
	ValidateAccess(token string) (*security.AccessClaims, error)
}

// RequireAccess verifies the bearer access token and injects its claims into
// the request context. Purely local: no store access, so revoking a refresh
// token never affects requests carrying a still-valid access token.
func RequireAccess(tokens AccessValidator, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respond.Error(w, http.StatusBadRequest, "missing credentials")
				return
			}

			claims, err := tokens.ValidateAccess(token)
			if err != nil {
				if errors.Is(err, security.ErrTokenExpired) {
					log.Info("access token expired")
				} else {
					log.Warn("access token rejected", slog.Any("error", err))
				}
				respond.Error(w, http.StatusBadRequest, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
