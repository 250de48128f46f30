package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cartdomain "github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
)

const currency = "PEN"

func (s *CheckoutServiceImpl) getCart(ctx context.Context, userKey string) (*d.CartSnapshot, []byte, error) {
	cart, err := s.cart.GetCart(ctx, userKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	snapshot, err := s.buildCartSnapshot(ctx, cart.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build cart snapshot: %w", err)
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}
	return snapshot, snapshotJSON, nil
}

// buildCartSnapshot fetches current prices from the catalog and freezes them
// onto the snapshot, decoupled from whatever price the cart line was showing.
func (s *CheckoutServiceImpl) buildCartSnapshot(ctx context.Context, cartItems []cartdomain.CartItem) (*d.CartSnapshot, error) {
	snapshot := &d.CartSnapshot{
		Items:      make([]d.CartSnapshotItem, 0, len(cartItems)),
		Currency:   currency,
		CapturedAt: time.Now(),
	}

	var totalAmount float64

	for _, item := range cartItems {
		product, err := s.catalog.Get(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
		}

		subtotal := product.Price * float64(item.Quantity)

		snapshot.Items = append(snapshot.Items, d.CartSnapshotItem{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})

		totalAmount += subtotal
	}

	snapshot.TotalAmount = totalAmount
	return snapshot, nil
}
