package service

import (
	"context"
	"errors"
	"time"

	"github.com/corveoperu/cuervo-blanco-web/internal/cart/cache"
	"github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/cart/repository"
	catalogdomain "github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 99")
	ErrProductNotForSale = errors.New("product is not available for sale")
)

const maxQuantity = 99

// ProductGetter is the slice of the catalog the cart needs: enough to verify
// a product is sellable and to snapshot its name and price onto the line.
type ProductGetter interface {
	Get(ctx context.Context, id int64) (*catalogdomain.Product, error)
}

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog ProductGetter
	logger  *zap.Logger
	sfg     singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, catalog ProductGetter, logger *zap.Logger) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		logger:  logger,
	}
}

// GetCart returns the shopper's cart, or an empty cart when none exists yet.
func (s *CartService) GetCart(ctx context.Context, userKey string) (*domain.Cart, error) {
	// Use singleflight so concurrent cache misses for the same key hit the
	// repository only once
	v, err, _ := s.sfg.Do(userKey, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userKey)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.Error(err)) // log and fall through to the repo
		}

		cart, errGet := s.repo.GetCart(ctx, userKey)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				UserKey:   userKey,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userKey, cart); errSet != nil {
				s.logger.Warn("cart cache set failed", zap.Error(errSet))
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges quantity units of a product into the cart. The product must
// exist and be active; the current name and price are snapshotted onto the
// line. Stock is not checked here, only at checkout.
func (s *CartService) AddItem(ctx context.Context, userKey string, productID int64, quantity int32) error {
	if quantity < 1 || quantity > maxQuantity {
		return ErrInvalidQuantity
	}

	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Active {
		return ErrProductNotForSale
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
	}

	if err := s.repo.AddItem(ctx, userKey, item); err != nil {
		s.logger.Error("repo add item failed", zap.String("user_key", userKey), zap.Error(err))
		return err
	}

	s.invalidateCache(userKey)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userKey string, productID int64, quantity int32) error {
	if quantity < 1 || quantity > maxQuantity {
		return ErrInvalidQuantity
	}

	if err := s.repo.UpdateItemQuantity(ctx, userKey, productID, quantity); err != nil {
		s.logger.Error("repo update quantity failed", zap.String("user_key", userKey), zap.Error(err))
		return err
	}

	s.invalidateCache(userKey)
	return nil
}

// RemoveItem deletes the whole line for the product, regardless of quantity.
func (s *CartService) RemoveItem(ctx context.Context, userKey string, productID int64) error {
	if err := s.repo.RemoveItem(ctx, userKey, productID); err != nil {
		s.logger.Error("repo remove item failed", zap.String("user_key", userKey), zap.Error(err))
		return err
	}

	s.invalidateCache(userKey)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userKey string) error {
	err := s.repo.DeleteCart(ctx, userKey)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.logger.Error("repo delete cart failed", zap.String("user_key", userKey), zap.Error(err))
		return err
	}

	s.invalidateCache(userKey)
	return nil
}

func (s *CartService) invalidateCache(userKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userKey); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.String("user_key", userKey), zap.Error(err))
	}
}
