// Package handler exposes the health endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"membership-portal/backend/internal/platform/respond"
)

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db  Pinger
	log *slog.Logger
}

func NewHandler(db Pinger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{db: db, log: log}
}

// Healthz reports ok when the database answers a ping within two seconds.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Error("health check failed", slog.Any("error", err))
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
