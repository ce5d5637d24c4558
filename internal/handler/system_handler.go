package handler

import (
	"context"
	"net/http"
	"time"

	"cashier/internal/model"

	"github.com/rs/zerolog"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncFunc applies the schema and bootstrap data.
type SyncFunc func(ctx context.Context) error

// SystemHandler serves health and schema maintenance endpoints.
type SystemHandler struct {
	db     Pinger
	sync   SyncFunc
	logger zerolog.Logger
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(db Pinger, sync SyncFunc, logger zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:     db,
		sync:   sync,
		logger: logger.With().Str("handler", "system").Logger(),
	}
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Sync handles POST /api/sync. It is idempotent.
func (h *SystemHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.sync(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("schema sync failed")
		writeError(w, r, http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   model.ErrCodeStorageFailure,
			Message: "schema sync failed",
		})
		return
	}

	h.logger.Info().Msg("schema synced")
	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}
