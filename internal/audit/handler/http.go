// Package handler exposes the audit log to admins.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	auditdomain "membership-portal/backend/internal/audit/domain"
	auditrepo "membership-portal/backend/internal/audit/repository"
	"membership-portal/backend/internal/platform/rbac"
	"membership-portal/backend/internal/platform/respond"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Handler struct {
	repo auditrepo.Repository
	log  *slog.Logger
}

func NewHandler(repo auditrepo.Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// Routes mounts the audit endpoints behind the admin check.
func (h *Handler) Routes(r chi.Router) {
	r.Use(rbac.RequireAdmin)
	r.Get("/", h.list)
}

// list returns audit events newest-first. limit and offset come from query
// parameters; limit is clamped to 500.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.repo.List(r.Context(), int32(limit), int32(offset))
	if err != nil {
		h.log.Error("failed to list audit log", slog.Any("error", err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []*auditdomain.AuditLog{}
	}
	respond.JSON(w, http.StatusOK, entries)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
