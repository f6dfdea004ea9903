package web

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the HTML dashboard routes on r.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Dashboard)
}
