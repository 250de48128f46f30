package domain

import (
	orderdomain "github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/google/uuid"
)

type InitiateRequest struct {
	UserKey        string
	IdempotencyKey string
	Contact        orderdomain.ContactInfo
}

type InitiateResponse struct {
	CheckoutID uuid.UUID      `json:"checkout_id"`
	OrderID    uuid.UUID      `json:"order_id"`
	Status     CheckoutStatus `json:"status"`
	Total      float64        `json:"total"`
	Currency   string         `json:"currency"`
}
