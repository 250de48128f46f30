package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	checkoutdomain "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	checkoutrepo "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/checkout/service"
	"github.com/corveoperu/cuervo-blanco-web/internal/inventory"
	orderdomain "github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxProofSize caps the payment screenshot upload at 5MB.
const maxProofSize = 5 << 20

type CheckoutHandler struct {
	checkout service.CheckoutService
}

func NewCheckoutHandler(checkout service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type InitiateCheckoutDTO struct {
	IdempotencyKey string                  `json:"idempotency_key"`
	Contact        orderdomain.ContactInfo `json:"contact"`
}

func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateCheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	if req.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "missing_idempotency_key", "idempotency_key is required")
		return
	}

	resp, err := h.checkout.InitiateCheckout(r.Context(), &checkoutdomain.InitiateRequest{
		UserKey:        userKeyFromContext(r.Context()),
		IdempotencyKey: req.IdempotencyKey,
		Contact:        req.Contact,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// AttachProof handles the multipart payment-proof upload for an order.
func (h *CheckoutHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProofSize)
	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_upload", "expected a multipart form with a proof file")
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_file", "proof file is required")
		return
	}
	defer file.Close()

	url, err := h.checkout.AttachProof(r.Context(), userKeyFromContext(r.Context()), orderID, &service.ProofUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"proof_url": url})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
	case errors.Is(err, service.ErrMissingContactInfo):
		respondError(w, http.StatusBadRequest, "missing_contact_info", "name, phone and email are required")
	case errors.Is(err, service.ErrUnsupportedImage):
		respondError(w, http.StatusBadRequest, "unsupported_image", "payment proof must be a jpg, png or webp image")
	case errors.Is(err, service.ErrProofNotExpected):
		respondError(w, http.StatusConflict, "proof_not_expected", "order is not awaiting a payment proof")
	case errors.Is(err, inventory.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", "not enough stock for one or more items")
	case errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, http.StatusConflict, "product_unavailable", "a cart item is no longer available")
	case errors.Is(err, checkoutrepo.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
