// Package handler exposes registration and verification over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"membership-portal/backend/internal/platform/respond"
	"membership-portal/backend/internal/user"
	"membership-portal/backend/internal/user/domain"
)

// RegistrationService is the part of the user service the handlers need.
type RegistrationService interface {
	Register(ctx context.Context, reg domain.Registration) (*user.RegistrationResult, error)
	Verify(ctx context.Context, token uuid.UUID) error
}

type Handler struct {
	svc RegistrationService
	log *slog.Logger
}

func NewHandler(svc RegistrationService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts the public registration endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/verify", h.verify)
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Shortcode string `json:"shortcode"`
	CID       string `json:"cid"`
	Password  string `json:"password"`
}

type registerResponse struct {
	Verified bool `json:"verified"`
	// VerificationToken is only set for unverified registrations. It is
	// returned directly until email delivery exists.
	VerificationToken string `json:"verification_token,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}

	res, err := h.svc.Register(r.Context(), domain.Registration{
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Shortcode: req.Shortcode,
		CID:       req.CID,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrValidation):
			respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, user.ErrShortcodeTaken):
			respond.Error(w, http.StatusConflict, "shortcode already registered")
		default:
			h.log.Error("registration failed", slog.Any("error", err))
			respond.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	out := registerResponse{Verified: res.Verified}
	if !res.Verified {
		out.VerificationToken = res.VerificationToken.String()
	}
	respond.JSON(w, http.StatusCreated, out)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(r.URL.Query().Get("token"))
	if err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, "invalid verification token")
		return
	}

	if err := h.svc.Verify(r.Context(), token); err != nil {
		if errors.Is(err, user.ErrInvalidVerification) {
			respond.Error(w, http.StatusUnprocessableEntity, "invalid verification token")
			return
		}
		h.log.Error("verification failed", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusCreated)
}
