package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	r "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/inventory"
	orderdomain "github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const paymentMethod = "Yape/Plin"

// InitiateCheckout runs the order-creation saga: snapshot the cart at live
// prices, reserve stock, insert the order with its line items, clear the
// cart. Each step persists the session status first, so failures leave an
// inspectable row instead of an orphan.
func (s *CheckoutServiceImpl) InitiateCheckout(
	ctx context.Context,
	request *d.InitiateRequest) (*d.InitiateResponse, error) {

	if err := validateContact(request); err != nil {
		return nil, err
	}

	// A retried request returns the original result, whatever state it is in
	existing, err := s.repo.GetSessionByIdempotencyKey(ctx, request.IdempotencyKey)
	if err != nil && !errors.Is(err, r.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		s.logger.Info("duplicate checkout request",
			zap.String("idempotency_key", request.IdempotencyKey),
			zap.String("checkout_id", existing.ID.String()),
			zap.String("status", existing.Status.String()))
		return responseFromSession(existing)
	}

	snapshot, snapshotJSON, err := s.getCart(ctx, request.UserKey)
	if err != nil {
		return nil, err
	}

	session := &r.CheckoutSession{
		ID:             uuid.New(),
		UserKey:        request.UserKey,
		IdempotencyKey: request.IdempotencyKey,
		Status:         d.CheckoutStatusInitiated,
		CartSnapshot:   snapshotJSON,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, r.ErrDuplicateKey) {
			// Lost a race with a concurrent retry; hand back its session
			if again, e2 := s.repo.GetSessionByIdempotencyKey(ctx, request.IdempotencyKey); e2 == nil {
				return responseFromSession(again)
			}
		}
		return nil, err
	}

	if err := s.reserveStock(ctx, session.ID, session.Status, snapshot); err != nil {
		return nil, err
	}

	orderID, err := s.createOrder(ctx, session.ID, d.CheckoutStatusStockReserved, request, snapshot)
	if err != nil {
		return nil, err
	}

	// The order exists; an unreachable cart only means the shopper sees
	// stale lines until it expires
	if err := s.cart.ClearCart(ctx, request.UserKey); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("user_key", request.UserKey), zap.Error(err))
	}

	return &d.InitiateResponse{
		CheckoutID: session.ID,
		OrderID:    orderID,
		Status:     d.CheckoutStatusOrderCreated,
		Total:      snapshot.TotalAmount,
		Currency:   snapshot.Currency,
	}, nil
}

func (s *CheckoutServiceImpl) reserveStock(ctx context.Context, checkoutID uuid.UUID, status d.CheckoutStatus, snapshot *d.CartSnapshot) error {
	if !d.CanTransitionTo(status, d.CheckoutStatusStockReserved) {
		return ErrIllegalTransition
	}

	lines := make([]inventory.Line, len(snapshot.Items))
	for i, item := range snapshot.Items {
		lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	if err := s.stock.Reserve(ctx, lines); err != nil {
		reason := fmt.Sprintf("stock reservation failed: %v", err)
		if failErr := s.repo.FailSession(ctx, checkoutID, reason); failErr != nil {
			s.logger.Error("failed to mark session as failed",
				zap.String("checkout_id", checkoutID.String()), zap.Error(failErr))
		}
		return err
	}

	return s.repo.UpdateSessionStatus(ctx, checkoutID, d.CheckoutStatusStockReserved)
}

func (s *CheckoutServiceImpl) createOrder(ctx context.Context, checkoutID uuid.UUID, status d.CheckoutStatus, request *d.InitiateRequest, snapshot *d.CartSnapshot) (uuid.UUID, error) {
	if !d.CanTransitionTo(status, d.CheckoutStatusOrderCreated) {
		return uuid.Nil, ErrIllegalTransition
	}

	items := make([]orderdomain.OrderItem, len(snapshot.Items))
	for i, item := range snapshot.Items {
		items[i] = orderdomain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	order := &orderdomain.Order{
		ID:            uuid.New(),
		CheckoutID:    checkoutID,
		UserKey:       request.UserKey,
		Contact:       request.Contact,
		TotalAmount:   snapshot.TotalAmount,
		Currency:      snapshot.Currency,
		Status:        orderdomain.OrderStatusPending,
		PaymentMethod: paymentMethod,
		Items:         items,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		// Compensate: the reserved units go back before the session fails
		lines := make([]inventory.Line, len(snapshot.Items))
		for i, item := range snapshot.Items {
			lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if retErr := s.stock.Return(ctx, lines); retErr != nil {
			s.logger.Error("failed to return stock after order insert failure",
				zap.String("checkout_id", checkoutID.String()), zap.Error(retErr))
		}
		reason := fmt.Sprintf("order insert failed: %v", err)
		if failErr := s.repo.FailSession(ctx, checkoutID, reason); failErr != nil {
			s.logger.Error("failed to mark session as failed",
				zap.String("checkout_id", checkoutID.String()), zap.Error(failErr))
		}
		return uuid.Nil, err
	}

	payload := map[string]interface{}{
		"checkout_id":  checkoutID.String(),
		"order_id":     order.ID.String(),
		"user_key":     request.UserKey,
		"items":        snapshot.Items,
		"total_amount": snapshot.TotalAmount,
		"currency":     snapshot.Currency,
		"created_at":   time.Now(),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	if err := s.repo.MarkOrderCreated(ctx, checkoutID, order.ID, payloadJSON); err != nil {
		return uuid.Nil, err
	}
	return order.ID, nil
}

func validateContact(request *d.InitiateRequest) error {
	c := request.Contact
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" || strings.TrimSpace(c.Email) == "" {
		return ErrMissingContactInfo
	}
	return nil
}

func responseFromSession(session *r.CheckoutSession) (*d.InitiateResponse, error) {
	resp := &d.InitiateResponse{
		CheckoutID: session.ID,
		Status:     session.Status,
	}
	if session.OrderID != nil {
		resp.OrderID = *session.OrderID
	}
	var snapshot d.CartSnapshot
	if err := json.Unmarshal(session.CartSnapshot, &snapshot); err == nil {
		resp.Total = snapshot.TotalAmount
		resp.Currency = snapshot.Currency
	}
	return resp, nil
}
