// Package handler exposes the auth service over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"membership-portal/backend/internal/auth"
	"membership-portal/backend/internal/platform/respond"
)

// AuthService is the part of the auth service the handlers need.
type AuthService interface {
	Login(ctx context.Context, shortcode, password string, keepLogin bool) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type Handler struct {
	svc AuthService
	log *slog.Logger
}

func NewHandler(svc AuthService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts the auth endpoints. None of them sit behind the access guard:
// login has no token yet, and refresh/logout carry the refresh token
// themselves.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Get("/refresh", h.refresh)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Shortcode string `json:"shortcode"`
	Password  string `json:"password"`
	KeepLogin bool   `json:"keep_login"`
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	pair, err := h.svc.Login(r.Context(), req.Shortcode, req.Password, req.KeepLogin)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, tokenPairResponse(pair))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "missing credentials")
		return
	}
	pair, err := h.svc.Refresh(r.Context(), token)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, tokenPairResponse(pair))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "missing credentials")
		return
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		h.log.Error("logout failed", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeAuthError maps the auth sentinels to fixed status/body pairs. Anything
// outside the taxonomy is an operational fault and stays opaque.
func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		respond.Error(w, http.StatusBadRequest, "missing credentials")
	case errors.Is(err, auth.ErrWrongCredentials):
		respond.Error(w, http.StatusUnauthorized, "wrong credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		respond.Error(w, http.StatusBadRequest, "invalid token")
	case errors.Is(err, auth.ErrTokenCreation):
		h.log.Error("token creation failed", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
	default:
		h.log.Error("auth request failed", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func tokenPairResponse(pair *auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    pair.AccessExpiresAt,
	}
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
