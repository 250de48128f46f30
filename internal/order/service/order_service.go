package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/corveoperu/cuervo-blanco-web/internal/inventory"
	"github.com/corveoperu/cuervo-blanco-web/internal/order/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/order/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrIllegalTransition = errors.New("illegal order status transition")

// EventRecorder appends an event to the outbox so downstream consumers learn
// about order lifecycle changes.
type EventRecorder interface {
	RecordEvent(ctx context.Context, aggregateID, eventType string, payload any) error
}

type OrderService struct {
	repo   repository.OrderRepository
	stock  inventory.Store
	events EventRecorder
	logger *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, stock inventory.Store, events EventRecorder, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, stock: stock, events: events, logger: logger}
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// GetForUser fetches an order only if it belongs to the given user key.
func (s *OrderService) GetForUser(ctx context.Context, id uuid.UUID, userKey string) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserKey != userKey {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userKey string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userKey)
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus applies an operator transition. Moves outside the allowed set
// are rejected, and cancelling an order puts its units back in stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.OrderStatus) error {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransitionTo(order.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}

	if to == domain.OrderStatusCancelled {
		lines := make([]inventory.Line, len(order.Items))
		for i, item := range order.Items {
			lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if err := s.stock.Return(ctx, lines); err != nil {
			// The order is already cancelled; a failed return is an
			// operational problem, not a reason to fail the transition.
			s.logger.Error("stock return after cancellation failed",
				zap.String("order_id", id.String()), zap.Error(err))
		}
	}

	payload := map[string]any{
		"order_id": id.String(),
		"from":     order.Status,
		"to":       to,
	}
	if err := s.events.RecordEvent(ctx, id.String(), "order.status_changed", payload); err != nil {
		s.logger.Error("failed to record status change event",
			zap.String("order_id", id.String()), zap.Error(err))
	}

	s.logger.Info("order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", order.Status.String()),
		zap.String("to", to.String()))
	return nil
}
