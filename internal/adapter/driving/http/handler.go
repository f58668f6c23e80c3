// Package httphandler is the HTTP driving adapter that serves the REST API.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/mywrap/internal/application"
	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// WrapReader is the slice of WrapService the handler depends on.
type WrapReader interface {
	GetOrCreate(ctx context.Context, userID string, period int) (model.AggregatedWrap, error)
	ForceRefresh(ctx context.Context, userID string, period int) (model.AggregatedWrap, error)
}

// Handler serves the wrap API.
type Handler struct {
	wraps  WrapReader
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(wraps WrapReader, logger *slog.Logger) *Handler {
	return &Handler{
		wraps:  wraps,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered, wrap
// routes behind bearer auth, and logging and recovery middleware applied.
func NewServeMux(h *Handler, sessionSecret []byte, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/v1/wrap", authMiddleware(sessionSecret, http.HandlerFunc(h.GetWrap)))
	mux.Handle("POST /api/v1/wrap/refresh", authMiddleware(sessionSecret, http.HandlerFunc(h.RefreshWrap)))
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GetWrap returns the user's wrap for the requested period, computing and
// caching it on first request.
func (h *Handler) GetWrap(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	wrap, err := h.wraps.GetOrCreate(r.Context(), userID, period)
	if err != nil {
		h.writeWrapError(w, userID, period, err)
		return
	}

	writeJSON(w, http.StatusOK, toWrapResponse(wrap))
}

// RefreshWrap discards any cached wrap for the period and recomputes it.
func (h *Handler) RefreshWrap(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	wrap, err := h.wraps.ForceRefresh(r.Context(), userID, period)
	if err != nil {
		h.writeWrapError(w, userID, period, err)
		return
	}

	writeJSON(w, http.StatusOK, toWrapResponse(wrap))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// parsePeriod reads the optional period query parameter, defaulting to the
// current UTC year. Writes a 400 and returns false on a malformed value.
func parsePeriod(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return time.Now().UTC().Year(), true
	}

	period, err := strconv.Atoi(raw)
	if err != nil || period < 2000 || period > 2100 {
		writeError(w, http.StatusBadRequest, "invalid period", "bad_period")
		return 0, false
	}

	return period, true
}

func (h *Handler) writeWrapError(w http.ResponseWriter, userID string, period int, err error) {
	var perr *driven.PersistenceError
	switch {
	case errors.Is(err, application.ErrNoConnections):
		h.logger.Info("wrap requested with no connections", "user_id", userID, "period", period)
		writeError(w, http.StatusInternalServerError, "no connected providers", "no_connections")
	case errors.As(err, &perr):
		h.logger.Error("wrap persistence failed", "user_id", userID, "period", period, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store wrap", "persistence_error")
	default:
		h.logger.Error("wrap generation failed", "user_id", userID, "period", period, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "internal_error")
	}
}
