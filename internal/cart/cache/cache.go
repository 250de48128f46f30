package cache

import (
	"context"
	"errors"

	"github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
)

type CartCache interface {
	Get(ctx context.Context, userKey string) (*domain.Cart, error)
	Set(ctx context.Context, userKey string, cart *domain.Cart) error
	Delete(ctx context.Context, userKey string) error
}

var ErrCacheMiss = errors.New("cache miss")
