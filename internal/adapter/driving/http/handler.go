package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ericfisherdev/vpspanel/internal/application"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	statusSvc *application.StatusService
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(statusSvc *application.StatusService, logger *slog.Logger) *Handler {
	return &Handler{
		statusSvc: statusSvc,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on r.
func RegisterAPIRoutes(r chi.Router, h *Handler) {
	r.Get("/info", h.Info)
	r.Get("/healthz", h.Health)
}

// Info returns the status of every configured account as a JSON array.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statusSvc.FetchAll(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch service statuses", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, statuses)
}

// Health reports process liveness. It does not contact the provider.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
