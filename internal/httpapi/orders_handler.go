package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/order/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/order/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	orders *service.OrderService
}

func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// ListMine handles GET /orders for the current shopper.
func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), userKeyFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetForUser(r.Context(), id, userKeyFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListAll handles GET /admin/orders.
func (h *OrdersHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

type UpdateOrderStatusDTO struct {
	Status domain.OrderStatus `json:"status"`
}

// UpdateStatus handles PUT /admin/orders/{order_id}/status with the guarded
// transition set; cancelling returns stock.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateOrderStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !domain.ValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "not_found", "order not found")
		case errors.Is(err, service.ErrIllegalTransition):
			respondError(w, http.StatusConflict, "illegal_transition", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to update order status")
		}
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
