// Package rbac provides the authorization middleware layered on top of the
// access guard. Role data comes from the verified access claims, so checks
// are local to the request.
package rbac

import (
	"net/http"

	"membership-portal/backend/internal/platform/respond"
	"membership-portal/backend/internal/server/middleware"
)

// RequireAdmin rejects callers whose access claims do not carry the admin
// flag. Must be mounted behind the access guard.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.GetClaims(r.Context())
		if claims == nil {
			respond.Error(w, http.StatusBadRequest, "missing credentials")
			return
		}
		if !claims.Admin {
			respond.Error(w, http.StatusForbidden, "admin required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
