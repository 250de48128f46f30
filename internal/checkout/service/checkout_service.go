package service

import (
	"context"

	cartdomain "github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
	catalogdomain "github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	r "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/inventory"
	orderrepo "github.com/corveoperu/cuervo-blanco-web/internal/order/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartReader is the slice of the cart service the saga needs.
type CartReader interface {
	GetCart(ctx context.Context, userKey string) (*cartdomain.Cart, error)
	ClearCart(ctx context.Context, userKey string) error
}

// ProductReader fetches live catalog prices for the snapshot.
type ProductReader interface {
	Get(ctx context.Context, id int64) (*catalogdomain.Product, error)
}

type CheckoutService interface {
	InitiateCheckout(ctx context.Context, request *d.InitiateRequest) (*d.InitiateResponse, error)
	AttachProof(ctx context.Context, userKey string, orderID uuid.UUID, upload *ProofUpload) (string, error)
}

type CheckoutServiceImpl struct {
	repo    r.RepoInterface
	orders  orderrepo.OrderRepository
	cart    CartReader
	catalog ProductReader
	stock   inventory.Store
	blobs   storage.BlobStore
	logger  *zap.Logger
}

func NewCheckoutService(
	repo r.RepoInterface,
	orders orderrepo.OrderRepository,
	cart CartReader,
	catalog ProductReader,
	stock inventory.Store,
	blobs storage.BlobStore,
	logger *zap.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		repo:    repo,
		orders:  orders,
		cart:    cart,
		catalog: catalog,
		stock:   stock,
		blobs:   blobs,
		logger:  logger,
	}
}
