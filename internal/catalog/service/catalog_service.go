package service

import (
	"context"
	"errors"
	"strings"

	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/filter"
	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidProduct = errors.New("product is missing required fields")
	ErrEmptySpecKey   = errors.New("spec attribute name must not be empty")
	ErrNegativeStock  = errors.New("stock must not be negative")
)

type CatalogService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// Browse fetches the active catalog and runs the storefront filter pipeline
// over it. Filtering happens in-process over the full list, mirroring how the
// storefront consumes it.
func (s *CatalogService) Browse(ctx context.Context, criteria filter.Criteria) (*filter.Page, error) {
	products, err := s.repo.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}
	page := filter.Apply(products, criteria)
	return &page, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAll returns every product including inactive ones, for the admin
// console.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.GetAll(ctx, false)
}

func (s *CatalogService) Create(ctx context.Context, p *domain.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return nil
}

func (s *CatalogService) Update(ctx context.Context, p *domain.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.logger.Info("product updated", zap.Int64("product_id", p.ID))
	return nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func validate(p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" || p.Price <= 0 {
		return ErrInvalidProduct
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	for k := range p.Specs {
		if strings.TrimSpace(k) == "" {
			return ErrEmptySpecKey
		}
	}
	return nil
}
