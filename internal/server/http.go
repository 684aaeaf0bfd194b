// Package server wires the HTTP API: router, middleware, and handler mounts.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	adminhandler "membership-portal/backend/internal/admin/handler"
	audithandler "membership-portal/backend/internal/audit/handler"
	authhandler "membership-portal/backend/internal/auth/handler"
	healthhandler "membership-portal/backend/internal/health/handler"
	"membership-portal/backend/internal/security"
	"membership-portal/backend/internal/server/middleware"
	sessionhandler "membership-portal/backend/internal/session/handler"
	userhandler "membership-portal/backend/internal/user/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Tokens  *security.TokenProvider
	Auth    *authhandler.Handler
	Users   *userhandler.Handler
	Session *sessionhandler.Handler
	Admins  *adminhandler.Handler
	Audit   *audithandler.Handler
	Health  *healthhandler.Handler
	Log     *slog.Logger
}

// NewRouter builds the API router. Auth, registration, and health are public;
// everything else sits behind the access guard.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.ClientIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace("membership-portal/backend"))

	r.Get("/healthz", d.Health.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", d.Auth.Routes)
		r.Route("/users", d.Users.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAccess(d.Tokens, d.Log))
			r.Route("/sessions", d.Session.Routes)
			r.Route("/admins", d.Admins.Routes)
			r.Route("/audit", d.Audit.Routes)
		})
	})

	return r
}
