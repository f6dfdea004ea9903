// Package web implements the HTML dashboard driving adapter.
package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/vpspanel/internal/application"
)

// Handler is the web driving adapter that serves the HTML dashboard.
type Handler struct {
	statusSvc *application.StatusService
	pages     *Renderer
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(statusSvc *application.StatusService, pages *Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		statusSvc: statusSvc,
		pages:     pages,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard fetches every account's status and renders the info-page
// template. The page is rendered into a buffer first so a failure yields a
// 500 rather than a truncated page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statusSvc.FetchAll(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch service statuses", "error", err)
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	component := h.pages.Component(infoPage, toInfoPageContext(statuses, h.now()))
	if err := component.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write dashboard", "error", err)
	}
}
