package repository

import (
	"context"
	"errors"

	"github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userKey string) (*domain.Cart, error)
	// AddItem merges the item into the cart: an existing line for the same
	// product has its quantity incremented, otherwise a new line is appended.
	AddItem(ctx context.Context, userKey string, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, userKey string, productID int64, quantity int32) error
	RemoveItem(ctx context.Context, userKey string, productID int64) error
	DeleteCart(ctx context.Context, userKey string) error
}
