package rbac

import (
	"net/http"

	"membership-portal/backend/internal/platform/respond"
	"membership-portal/backend/internal/server/middleware"
)

// RequireTier rejects callers below the given membership tier. Admins pass
// regardless of tier. Must be mounted behind the access guard.
func RequireTier(min int16) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := middleware.GetClaims(r.Context())
			if claims == nil {
				respond.Error(w, http.StatusBadRequest, "missing credentials")
				return
			}
			if claims.Tier < min && !claims.Admin {
				respond.Error(w, http.StatusForbidden, "membership tier too low")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
