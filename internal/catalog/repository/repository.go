package repository

import (
	"context"
	"errors"

	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	GetAll(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}
