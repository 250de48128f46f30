package service

import (
	"context"
	"sync"

	cartdomain "github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
	catalogdomain "github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	catalogrepo "github.com/corveoperu/cuervo-blanco-web/internal/catalog/repository"
	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	r "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	orderdomain "github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	orderrepo "github.com/corveoperu/cuervo-blanco-web/internal/order/repository"
	"github.com/google/uuid"
)

type memoryCheckoutRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*r.CheckoutSession
	events   []*r.OutboxEvent
	nextID   int64
}

func newMemoryCheckoutRepo() *memoryCheckoutRepo {
	return &memoryCheckoutRepo{sessions: make(map[uuid.UUID]*r.CheckoutSession)}
}

func (m *memoryCheckoutRepo) CreateSession(_ context.Context, session *r.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.IdempotencyKey == session.IdempotencyKey {
			return r.ErrDuplicateKey
		}
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *memoryCheckoutRepo) GetSessionByIdempotencyKey(_ context.Context, key string) (*r.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.IdempotencyKey == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, r.ErrIdempotencyKeyNotFound
}

func (m *memoryCheckoutRepo) GetSessionByOrderID(_ context.Context, orderID uuid.UUID) (*r.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.OrderID != nil && *s.OrderID == orderID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, r.ErrSessionNotFound
}

func (m *memoryCheckoutRepo) UpdateSessionStatus(_ context.Context, id uuid.UUID, status d.CheckoutStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return r.ErrSessionNotFound
	}
	s.Status = status
	return nil
}

func (m *memoryCheckoutRepo) MarkOrderCreated(_ context.Context, id, orderID uuid.UUID, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return r.ErrSessionNotFound
	}
	s.Status = d.CheckoutStatusOrderCreated
	s.OrderID = &orderID
	m.appendEvent(id.String(), "order.created", payload)
	return nil
}

func (m *memoryCheckoutRepo) CompleteSession(_ context.Context, id uuid.UUID, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return r.ErrSessionNotFound
	}
	s.Status = d.CheckoutStatusCompleted
	m.appendEvent(id.String(), "order.proof_attached", payload)
	return nil
}

func (m *memoryCheckoutRepo) FailSession(_ context.Context, id uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return r.ErrSessionNotFound
	}
	s.Status = d.CheckoutStatusFailed
	s.FailureReason = reason
	return nil
}

func (m *memoryCheckoutRepo) RecordEvent(_ context.Context, aggregateID, eventType string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendEvent(aggregateID, eventType, nil)
	return nil
}

func (m *memoryCheckoutRepo) GetUnprocessedEvents(_ context.Context, limit int) ([]*r.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]*r.OutboxEvent, 0, len(m.events))
	for _, ev := range m.events {
		if len(events) == limit {
			break
		}
		cp := *ev
		events = append(events, &cp)
	}
	return events, nil
}

func (m *memoryCheckoutRepo) MarkEventAsProcessed(_ context.Context, _ int64) error {
	return nil
}

func (m *memoryCheckoutRepo) GetStuckSessions(_ context.Context) ([]*r.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stuck []*r.CheckoutSession
	for _, s := range m.sessions {
		if s.Status == d.CheckoutStatusProofAttached {
			cp := *s
			stuck = append(stuck, &cp)
		}
	}
	return stuck, nil
}

func (m *memoryCheckoutRepo) appendEvent(aggregateID, eventType string, payload []byte) {
	m.nextID++
	m.events = append(m.events, &r.OutboxEvent{
		ID:          m.nextID,
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     payload,
	})
}

func (m *memoryCheckoutRepo) session(id uuid.UUID) *r.CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

type mockOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*orderdomain.Order
	createErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*orderdomain.Order)}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *orderdomain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*orderdomain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, orderrepo.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]orderdomain.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]orderdomain.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status orderdomain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return orderrepo.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepo) SetPaymentProof(_ context.Context, id uuid.UUID, proofURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return orderrepo.ErrOrderNotFound
	}
	order.PaymentProof = proofURL
	return nil
}

type mockCart struct {
	mu      sync.Mutex
	items   map[string][]cartdomain.CartItem
	cleared []string
}

func newMockCart() *mockCart {
	return &mockCart{items: make(map[string][]cartdomain.CartItem)}
}

func (m *mockCart) GetCart(_ context.Context, userKey string) (*cartdomain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &cartdomain.Cart{UserKey: userKey, Items: m.items[userKey]}, nil
}

func (m *mockCart) ClearCart(_ context.Context, userKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, userKey)
	m.cleared = append(m.cleared, userKey)
	return nil
}

type mockCatalog struct {
	mu       sync.Mutex
	products map[int64]*catalogdomain.Product
}

func newMockCatalog(products ...*catalogdomain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[int64]*catalogdomain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) Get(_ context.Context, id int64) (*catalogdomain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalogrepo.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}
