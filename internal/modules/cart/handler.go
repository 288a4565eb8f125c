package cart

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmuyenga/solestore-backend/internal/modules/pricing"
)

// Handler exposes cart HTTP endpoints.
type Handler struct {
	service Service
	policy  pricing.Policy
}

func NewHandler(service Service, policy pricing.Policy) *Handler {
	return &Handler{service: service, policy: policy}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)            // GET    /api/v1/cart
		r.Delete("/", h.clearCart)       // DELETE /api/v1/cart
		r.Post("/items", h.addItem)      // POST   /api/v1/cart/items
		r.Put("/items", h.setQuantity)   // PUT    /api/v1/cart/items
		r.Delete("/items", h.removeItem) // DELETE /api/v1/cart/items
	})
}

type itemRequest struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Items         []Item            `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
	Breakdown     pricing.Breakdown `json:"breakdown"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.snapshot(r))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if _, err := h.service.Add(r.Context(), req.ProductID, req.Size, req.Quantity); err != nil {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, h.snapshot(r))
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.service.SetQuantity(r.Context(), req.ProductID, req.Size, req.Quantity)
	respond(w, http.StatusOK, h.snapshot(r))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.service.Remove(r.Context(), req.ProductID, req.Size)
	respond(w, http.StatusOK, h.snapshot(r))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.service.Clear(r.Context())
	respond(w, http.StatusOK, h.snapshot(r))
}

func (h *Handler) snapshot(r *http.Request) cartResponse {
	items := h.service.Items(r.Context())
	return cartResponse{
		Items:         items,
		TotalQuantity: h.service.TotalQuantity(r.Context()),
		Breakdown:     pricing.ComputeBreakdown(Lines(items), h.policy),
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
