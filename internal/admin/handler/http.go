// Package handler exposes admin account management over HTTP. All routes
// require the admin flag on the caller's access claims.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"membership-portal/backend/internal/admin/domain"
	adminrepo "membership-portal/backend/internal/admin/repository"
	"membership-portal/backend/internal/audit"
	"membership-portal/backend/internal/db"
	"membership-portal/backend/internal/platform/rbac"
	"membership-portal/backend/internal/platform/respond"
	"membership-portal/backend/internal/security"
	"membership-portal/backend/internal/server/middleware"
)

type Handler struct {
	repo   adminrepo.Repository
	hasher *security.Hasher
	audit  audit.AuditLogger
	log    *slog.Logger
}

func NewHandler(repo adminrepo.Repository, hasher *security.Hasher, auditLog audit.AuditLogger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, hasher: hasher, audit: auditLog, log: log}
}

// Routes mounts the admin endpoints behind the admin check.
func (h *Handler) Routes(r chi.Router) {
	r.Use(rbac.RequireAdmin)
	r.Post("/", h.create)
	r.Get("/", h.list)
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}

	in := domain.NewAdminInput{Username: req.Username, Password: req.Password}
	if err := in.Validate(); err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	hash, err := h.hasher.Hash([]byte(in.Password))
	if err != nil {
		h.log.Error("failed to hash admin password", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	a := &domain.Admin{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.repo.Create(r.Context(), a); err != nil {
		if db.IsUniqueViolation(err) {
			respond.Error(w, http.StatusConflict, "username already taken")
			return
		}
		h.log.Error("failed to create admin", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.audit != nil {
		creator := middleware.GetUserID(r.Context())
		h.audit.LogEvent(r.Context(), &creator, audit.ActionAdminCreated, "admin", a.Username)
	}
	respond.JSON(w, http.StatusCreated, a)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	admins, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error("failed to list admins", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if admins == nil {
		admins = []*domain.Admin{}
	}
	respond.JSON(w, http.StatusOK, admins)
}
