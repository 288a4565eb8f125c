package diag

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the diagnostics HTTP endpoint.
type Handler struct{ probe *Probe }

func NewHandler(probe *Probe) *Handler { return &Handler{probe: probe} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/diagnostics", h.report) // GET /api/v1/diagnostics
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.probe.Report(r.Context()))
}
