package inventory

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Line is one product/quantity pair to reserve or return.
type Line struct {
	ProductID int64
	Quantity  int32
}

// Store guards the stock counters behind the catalog. Reserve is
// all-or-nothing: if any line lacks stock, no line is decremented.
type Store interface {
	// Reserve atomically decrements stock for every line.
	Reserve(ctx context.Context, lines []Line) error
	// Return adds the quantities back, used when an order is cancelled.
	Return(ctx context.Context, lines []Line) error
}
