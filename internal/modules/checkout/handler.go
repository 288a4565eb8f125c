package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes checkout and order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/checkout", h.submit) // POST /api/v1/checkout
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/last", h.lastOrder)                               // GET /api/v1/orders/last
		r.Get("/number/{number}", h.getOrderByNumber)             // GET /api/v1/orders/number/{number}
		r.Get("/failed-notifications", h.listFailedNotifications) // GET /api/v1/orders/failed-notifications
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var info CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.service.Submit(r.Context(), info)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			respond(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": ve.Fields})
		case errors.Is(err, ErrEmptyCart):
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrSubmissionInFlight):
			respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}
	respond(w, http.StatusCreated, result)
}

func (h *Handler) lastOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.LastOrder(r.Context())
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrOrderNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrderByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrOrderNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listFailedNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FailedNotifications(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, list)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
