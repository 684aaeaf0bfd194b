// Package handler exposes club session records over HTTP. All routes sit
// behind the access guard; creation additionally requires team tier.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"membership-portal/backend/internal/platform/rbac"
	"membership-portal/backend/internal/platform/respond"
	"membership-portal/backend/internal/server/middleware"
	"membership-portal/backend/internal/session/domain"
	sessionrepo "membership-portal/backend/internal/session/repository"
	userdomain "membership-portal/backend/internal/user/domain"
)

type Handler struct {
	repo sessionrepo.Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewHandler(repo sessionrepo.Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log, now: time.Now}
}

// Routes mounts the session endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.With(rbac.RequireTier(userdomain.TierTeam)).Post("/", h.create)
}

type createRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	Tier          int16      `json:"tier"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Recurrence    *string    `json:"recurrence"`
	RecurrenceEnd *time.Time `json:"recurrence_end"`
	UserLimit     *int16     `json:"user_limit"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s := &domain.Session{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		Tier:          req.Tier,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Recurrence:    req.Recurrence,
		RecurrenceEnd: req.RecurrenceEnd,
		UserLimit:     req.UserLimit,
		CreatedBy:     middleware.GetUserID(r.Context()),
		CreatedAt:     h.now().UTC(),
	}
	if err := s.Validate(); err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.repo.Create(r.Context(), s); err != nil {
		h.log.Error("failed to create session", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusCreated, s)
}

// list returns upcoming sessions visible at the caller's tier. Admins see
// everything.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		respond.Error(w, http.StatusBadRequest, "missing credentials")
		return
	}
	maxTier := claims.Tier
	if claims.Admin {
		maxTier = userdomain.TierTeam
	}

	sessions, err := h.repo.ListUpcoming(r.Context(), h.now().UTC(), maxTier)
	if err != nil {
		h.log.Error("failed to list sessions", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	respond.JSON(w, http.StatusOK, sessions)
}
