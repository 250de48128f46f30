package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	cartdomain "github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
	catalogdomain "github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/inventory"
	orderdomain "github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	svc     *CheckoutServiceImpl
	repo    *memoryCheckoutRepo
	orders  *mockOrderRepo
	cart    *mockCart
	catalog *mockCatalog
	stock   *inventory.MemoryStore
	blobs   *storage.MemoryStore
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		repo:   newMemoryCheckoutRepo(),
		orders: newMockOrderRepo(),
		cart:   newMockCart(),
		catalog: newMockCatalog(
			&catalogdomain.Product{ID: 1, Name: "Arduino Uno R3", Price: 50, Stock: 10, Active: true},
			&catalogdomain.Product{ID: 2, Name: "Protoboard 830", Price: 15, Stock: 3, Active: true},
		),
		stock: inventory.NewMemoryStore(),
		blobs: storage.NewMemoryStore(),
	}
	f.stock.SetStock(1, 10)
	f.stock.SetStock(2, 3)
	f.svc = NewCheckoutService(f.repo, f.orders, f.cart, f.catalog, f.stock, f.blobs, zap.NewNop())
	return f
}

func contact() orderdomain.ContactInfo {
	return orderdomain.ContactInfo{
		Name:    "Lucía Paredes",
		Email:   "lucia@example.com",
		Phone:   "+51 999 888 777",
		Address: "Av. Arequipa 1234, Lima",
	}
}

func TestInitiateCheckout_CreatesOrderFromCartAtLivePrices(t *testing.T) {
	f := newCheckoutFixture()
	f.cart.items["user-1"] = []cartdomain.CartItem{
		{ProductID: 1, Name: "Arduino Uno R3", UnitPrice: 50, Quantity: 2},
	}

	resp, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        contact(),
	})
	require.NoError(t, err)

	assert.Equal(t, d.CheckoutStatusOrderCreated, resp.Status)
	assert.Equal(t, 100.0, resp.Total)
	assert.Equal(t, "PEN", resp.Currency)

	order, err := f.orders.GetOrderByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStatusPending, order.Status)
	assert.Equal(t, 100.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 50.0, order.Items[0].UnitPrice)
	assert.Equal(t, int32(2), order.Items[0].Quantity)

	// Stock reserved and cart gone
	assert.Equal(t, int32(8), f.stock.Stock(1))
	assert.Contains(t, f.cart.cleared, "user-1")

	// order.created outbox event recorded
	events, err := f.repo.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order.created", events[0].EventType)
}

func TestInitiateCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        contact(),
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestInitiateCheckout_MissingContactInfo(t *testing.T) {
	f := newCheckoutFixture()
	f.cart.items["user-1"] = []cartdomain.CartItem{
		{ProductID: 1, Name: "Arduino Uno R3", UnitPrice: 50, Quantity: 1},
	}

	c := contact()
	c.Phone = "   "
	_, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        c,
	})
	assert.ErrorIs(t, err, ErrMissingContactInfo)
}

func TestInitiateCheckout_IdempotentRetryReturnsOriginal(t *testing.T) {
	f := newCheckoutFixture()
	f.cart.items["user-1"] = []cartdomain.CartItem{
		{ProductID: 1, Name: "Arduino Uno R3", UnitPrice: 50, Quantity: 2},
	}

	first, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        contact(),
	})
	require.NoError(t, err)

	second, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        contact(),
	})
	require.NoError(t, err)

	assert.Equal(t, first.CheckoutID, second.CheckoutID)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.Total, second.Total)

	// No double reservation
	assert.Equal(t, int32(8), f.stock.Stock(1))
	assert.Len(t, f.orders.orders, 1)
}

func TestInitiateCheckout_InsufficientStockFailsSession(t *testing.T) {
	f := newCheckoutFixture()
	f.cart.items["user-1"] = []cartdomain.CartItem{
		{ProductID: 2, Name: "Protoboard 830", UnitPrice: 15, Quantity: 5},
	}

	resp, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        contact(),
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Nil(t, resp)

	session, err := f.repo.GetSessionByIdempotencyKey(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, d.CheckoutStatusFailed, session.Status)
	assert.Contains(t, session.FailureReason, "stock reservation failed")

	// Nothing decremented, no order, cart untouched
	assert.Equal(t, int32(3), f.stock.Stock(2))
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.cart.cleared)
}

func TestInitiateCheckout_OrderInsertFailureReturnsStock(t *testing.T) {
	f := newCheckoutFixture()
	f.cart.items["user-1"] = []cartdomain.CartItem{
		{ProductID: 1, Name: "Arduino Uno R3", UnitPrice: 50, Quantity: 4},
	}
	f.orders.createErr = errors.New("connection reset")

	_, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Contact:        contact(),
	})
	require.Error(t, err)

	session, err := f.repo.GetSessionByIdempotencyKey(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, d.CheckoutStatusFailed, session.Status)

	// Compensation returned the reserved units
	assert.Equal(t, int32(10), f.stock.Stock(1))
}

func initiatedOrder(t *testing.T, f *checkoutFixture, userKey string) uuid.UUID {
	t.Helper()
	f.cart.items[userKey] = []cartdomain.CartItem{
		{ProductID: 1, Name: "Arduino Uno R3", UnitPrice: 50, Quantity: 1},
	}
	resp, err := f.svc.InitiateCheckout(context.Background(), &d.InitiateRequest{
		UserKey:        userKey,
		IdempotencyKey: "key-" + userKey,
		Contact:        contact(),
	})
	require.NoError(t, err)
	return resp.OrderID
}

func TestAttachProof_CompletesSession(t *testing.T) {
	f := newCheckoutFixture()
	orderID := initiatedOrder(t, f, "user-1")

	url, err := f.svc.AttachProof(context.Background(), "user-1", orderID, &ProofUpload{
		Filename:    "yape.png",
		ContentType: "image/png",
		Body:        strings.NewReader("fake image bytes"),
	})
	require.NoError(t, err)
	assert.Contains(t, url, "vouchers/"+orderID.String())

	order, err := f.orders.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, url, order.PaymentProof)

	session, err := f.repo.GetSessionByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, d.CheckoutStatusCompleted, session.Status)

	events, err := f.repo.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "order.proof_attached", events[1].EventType)
}

func TestAttachProof_RejectsUnsupportedExtension(t *testing.T) {
	f := newCheckoutFixture()
	orderID := initiatedOrder(t, f, "user-1")

	_, err := f.svc.AttachProof(context.Background(), "user-1", orderID, &ProofUpload{
		Filename: "comprobante.pdf",
		Body:     strings.NewReader("%PDF-1.4"),
	})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestAttachProof_RejectsForeignOrder(t *testing.T) {
	f := newCheckoutFixture()
	orderID := initiatedOrder(t, f, "user-1")

	_, err := f.svc.AttachProof(context.Background(), "user-2", orderID, &ProofUpload{
		Filename: "yape.jpg",
		Body:     strings.NewReader("bytes"),
	})
	assert.ErrorIs(t, err, ErrProofNotExpected)
}

func TestAttachProof_RejectsSecondProof(t *testing.T) {
	f := newCheckoutFixture()
	orderID := initiatedOrder(t, f, "user-1")

	_, err := f.svc.AttachProof(context.Background(), "user-1", orderID, &ProofUpload{
		Filename: "yape.jpg",
		Body:     strings.NewReader("bytes"),
	})
	require.NoError(t, err)

	_, err = f.svc.AttachProof(context.Background(), "user-1", orderID, &ProofUpload{
		Filename: "yape2.jpg",
		Body:     strings.NewReader("bytes"),
	})
	assert.ErrorIs(t, err, ErrProofNotExpected)
}

func TestSagaSteps_RejectOutOfOrderStatusWrites(t *testing.T) {
	f := newCheckoutFixture()
	snapshot := &d.CartSnapshot{
		Items: []d.CartSnapshotItem{
			{ProductID: 1, ProductName: "Arduino Uno R3", Quantity: 2, UnitPrice: 50, Subtotal: 100},
		},
		TotalAmount: 100,
		Currency:    "PEN",
	}

	// A session that already produced an order must not reserve again
	err := f.svc.reserveStock(context.Background(), uuid.New(), d.CheckoutStatusOrderCreated, snapshot)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, int32(10), f.stock.Stock(1))

	// Orders are only written after a successful reservation
	_, err = f.svc.createOrder(context.Background(), uuid.New(), d.CheckoutStatusInitiated,
		&d.InitiateRequest{UserKey: "user-1", Contact: contact()}, snapshot)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// Terminal sessions accept nothing
	err = f.svc.reserveStock(context.Background(), uuid.New(), d.CheckoutStatusFailed, snapshot)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	events, err := f.repo.GetUnprocessedEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAttachProof_UploadFailureLeavesSessionRecoverable(t *testing.T) {
	f := newCheckoutFixture()
	orderID := initiatedOrder(t, f, "user-1")
	f.blobs.FailWith(errors.New("s3 unavailable"))

	_, err := f.svc.AttachProof(context.Background(), "user-1", orderID, &ProofUpload{
		Filename: "yape.jpg",
		Body:     strings.NewReader("bytes"),
	})
	require.Error(t, err)

	session, err := f.repo.GetSessionByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, d.CheckoutStatusOrderCreated, session.Status)
}
