package httpapi

import (
	"context"
	"sort"
	"sync"
	"time"

	authdomain "github.com/corveoperu/cuervo-blanco-web/internal/auth/domain"
	authrepo "github.com/corveoperu/cuervo-blanco-web/internal/auth/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/session"
	cartdomain "github.com/corveoperu/cuervo-blanco-web/internal/cart/domain"
	cartrepo "github.com/corveoperu/cuervo-blanco-web/internal/cart/repository"
	catalogdomain "github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	catalogrepo "github.com/corveoperu/cuervo-blanco-web/internal/catalog/repository"
	checkoutdomain "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	checkoutservice "github.com/corveoperu/cuervo-blanco-web/internal/checkout/service"
	contentdomain "github.com/corveoperu/cuervo-blanco-web/internal/content/domain"
	contentrepo "github.com/corveoperu/cuervo-blanco-web/internal/content/repository"
	orderdomain "github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	orderrepo "github.com/corveoperu/cuervo-blanco-web/internal/order/repository"
	"github.com/google/uuid"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[int64]*catalogdomain.Product
	nextID   int64
}

func newMemProductRepo(products ...catalogdomain.Product) *memProductRepo {
	repo := &memProductRepo{products: make(map[int64]*catalogdomain.Product)}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	return repo
}

func (m *memProductRepo) GetAll(_ context.Context, activeOnly bool) ([]catalogdomain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalogdomain.Product
	for _, p := range m.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProductRepo) GetByID(_ context.Context, id int64) (*catalogdomain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalogrepo.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) Create(_ context.Context, p *catalogdomain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) Update(_ context.Context, p *catalogdomain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return catalogrepo.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return catalogrepo.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*cartdomain.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*cartdomain.Cart)}
}

func (m *memCartRepo) GetCart(_ context.Context, userKey string) (*cartdomain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userKey]
	if !ok {
		return nil, cartrepo.ErrCartNotFound
	}
	cp := *cart
	cp.Items = append([]cartdomain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (m *memCartRepo) AddItem(_ context.Context, userKey string, item cartdomain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userKey]
	if !ok {
		cart = &cartdomain.Cart{UserKey: userKey}
		m.carts[userKey] = cart
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (m *memCartRepo) UpdateItemQuantity(_ context.Context, userKey string, productID int64, quantity int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userKey]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return cartrepo.ErrItemNotFound
}

func (m *memCartRepo) RemoveItem(_ context.Context, userKey string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userKey]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return cartrepo.ErrItemNotFound
}

func (m *memCartRepo) DeleteCart(_ context.Context, userKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userKey)
	return nil
}

// noopCache always misses so handler tests exercise the repository path.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*cartdomain.Cart, error) {
	return nil, cartrepo.ErrCartNotFound
}
func (noopCache) Set(context.Context, string, *cartdomain.Cart) error { return nil }
func (noopCache) Delete(context.Context, string) error                { return nil }

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*orderdomain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*orderdomain.Order)}
}

func (m *memOrderRepo) CreateOrder(_ context.Context, order *orderdomain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *memOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*orderdomain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, orderrepo.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) ListByUser(_ context.Context, userKey string) ([]orderdomain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orderdomain.Order
	for _, o := range m.orders {
		if o.UserKey == userKey {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) ListAll(_ context.Context) ([]orderdomain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []orderdomain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status orderdomain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return orderrepo.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *memOrderRepo) SetPaymentProof(_ context.Context, id uuid.UUID, proofURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return orderrepo.ErrOrderNotFound
	}
	order.PaymentProof = proofURL
	return nil
}

type noopRecorder struct{}

func (noopRecorder) RecordEvent(context.Context, string, string, any) error { return nil }

// stubCheckout lets handler tests script the saga's outcome.
type stubCheckout struct {
	initiateResp *checkoutdomain.InitiateResponse
	initiateErr  error
	proofURL     string
	proofErr     error
	lastInitiate *checkoutdomain.InitiateRequest
}

func (s *stubCheckout) InitiateCheckout(_ context.Context, req *checkoutdomain.InitiateRequest) (*checkoutdomain.InitiateResponse, error) {
	s.lastInitiate = req
	if s.initiateErr != nil {
		return nil, s.initiateErr
	}
	return s.initiateResp, nil
}

func (s *stubCheckout) AttachProof(context.Context, string, uuid.UUID, *checkoutservice.ProofUpload) (string, error) {
	if s.proofErr != nil {
		return "", s.proofErr
	}
	return s.proofURL, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*authdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*authdomain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *authdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return authrepo.ErrDuplicateEmail
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*authdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, authrepo.ErrUserNotFound
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*authdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, authrepo.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) List(_ context.Context) ([]authdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []authdomain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role authdomain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return authrepo.ErrUserNotFound
	}
	u.Role = role
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*session.Session)}
}

func (m *memSessionStore) Create(_ context.Context, userID uuid.UUID, role authdomain.Role) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := &session.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	m.sessions[sess.Token] = sess
	return sess, nil
}

func (m *memSessionStore) Get(_ context.Context, token string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

func (m *memSessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type memContentRepo struct {
	mu          sync.Mutex
	projects    []contentdomain.Project
	repairs     map[string]*contentdomain.RepairRequest
	commissions map[int64]*contentdomain.Commission
	nextID      int64
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{
		repairs:     make(map[string]*contentdomain.RepairRequest),
		commissions: make(map[int64]*contentdomain.Commission),
	}
}

func (m *memContentRepo) ListProjects(_ context.Context) ([]contentdomain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]contentdomain.Project(nil), m.projects...), nil
}

func (m *memContentRepo) CreateRepairRequest(_ context.Context, req *contentdomain.RepairRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.repairs[req.TicketCode]; exists {
		return contentrepo.ErrDuplicateTicket
	}
	m.nextID++
	req.ID = m.nextID
	cp := *req
	m.repairs[req.TicketCode] = &cp
	return nil
}

func (m *memContentRepo) GetRepairByTicket(_ context.Context, ticketCode string) (*contentdomain.RepairRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.repairs[ticketCode]
	if !ok {
		return nil, contentrepo.ErrTicketNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *memContentRepo) ListRepairRequests(_ context.Context) ([]contentdomain.RepairRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []contentdomain.RepairRequest
	for _, req := range m.repairs {
		out = append(out, *req)
	}
	return out, nil
}

func (m *memContentRepo) UpdateRepairStage(_ context.Context, id int64, stage int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.repairs {
		if req.ID == id {
			req.Stage = stage
			return nil
		}
	}
	return contentrepo.ErrTicketNotFound
}

func (m *memContentRepo) CreateCommission(_ context.Context, c *contentdomain.Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.commissions[c.ID] = &cp
	return nil
}

func (m *memContentRepo) ListCommissions(_ context.Context) ([]contentdomain.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []contentdomain.Commission
	for _, c := range m.commissions {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memContentRepo) UpdateCommissionStatus(_ context.Context, id int64, status contentdomain.CommissionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.commissions[id]
	if !ok {
		return contentrepo.ErrCommissionNotFound
	}
	c.Status = status
	return nil
}
