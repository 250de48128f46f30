package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/corveoperu/cuervo-blanco-web/internal/cart/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/cart/service"
)

type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int32 `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.GetCart(r.Context(), userKeyFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	userKey := userKeyFromContext(r.Context())
	if err := h.cart.AddItem(r.Context(), userKey, req.ProductID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	cart, err := h.cart.GetCart(r.Context(), userKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get cart")
		return
	}
	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	userKey := userKeyFromContext(r.Context())
	if err := h.cart.UpdateQuantity(r.Context(), userKey, productID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	cart, err := h.cart.GetCart(r.Context(), userKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	userKey := userKeyFromContext(r.Context())
	if err := h.cart.RemoveItem(r.Context(), userKey, productID); err != nil {
		handleCartError(w, err)
		return
	}

	cart, err := h.cart.GetCart(r.Context(), userKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userKey := userKeyFromContext(r.Context())
	if err := h.cart.ClearCart(r.Context(), userKey); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
	case errors.Is(err, service.ErrProductNotForSale):
		respondError(w, http.StatusBadRequest, "product_not_for_sale", "product is not available for sale")
	case errors.Is(err, repository.ErrCartNotFound), errors.Is(err, repository.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", "cart item not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
