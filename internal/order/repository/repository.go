package repository

import (
	"context"
	"errors"

	"github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateCheckout = errors.New("order for this checkout already exists")
)

type OrderRepository interface {
	// CreateOrder inserts the order and its line items in one transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userKey string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	SetPaymentProof(ctx context.Context, id uuid.UUID, proofURL string) error
}
