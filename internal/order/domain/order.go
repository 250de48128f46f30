package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// validTransitions is the full set of allowed operator moves. Anything not
// listed is rejected; the old console allowed any status to follow any other,
// which made "cancelled → shipped" possible by mistake.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
}

func CanTransitionTo(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// ContactInfo is the shipping/contact snapshot taken at purchase time.
type ContactInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Order is a persisted purchase intent. PaymentProof stays empty until the
// shopper uploads a voucher in the second checkout step.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	CheckoutID    uuid.UUID   `json:"checkout_id"`
	UserKey       string      `json:"user_key"`
	Contact       ContactInfo `json:"contact"`
	TotalAmount   float64     `json:"total_amount"`
	Currency      string      `json:"currency"`
	Status        OrderStatus `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	PaymentProof  string      `json:"payment_proof,omitempty"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem keeps the unit price captured at purchase time, decoupled from
// the live catalog price.
type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}
