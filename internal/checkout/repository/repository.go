package repository

import (
	"context"
	"errors"
	"time"

	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	"github.com/google/uuid"
)

var (
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrSessionNotFound        = errors.New("checkout session not found")
	ErrDuplicateKey           = errors.New("idempotency key already used")
)

// CheckoutSession is one row of the saga table.
type CheckoutSession struct {
	ID             uuid.UUID
	UserKey        string
	IdempotencyKey string
	Status         d.CheckoutStatus
	CartSnapshot   []byte // JSON
	OrderID        *uuid.UUID
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OutboxEvent is a pending message for the Kafka publisher.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type RepoInterface interface {
	CreateSession(ctx context.Context, session *CheckoutSession) error
	GetSessionByIdempotencyKey(ctx context.Context, key string) (*CheckoutSession, error)
	GetSessionByOrderID(ctx context.Context, orderID uuid.UUID) (*CheckoutSession, error)
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status d.CheckoutStatus) error
	// MarkOrderCreated sets the order reference, moves the session to
	// ORDER_CREATED and appends the order.created outbox event in one
	// transaction.
	MarkOrderCreated(ctx context.Context, id, orderID uuid.UUID, payload []byte) error
	// CompleteSession moves the session to COMPLETED and appends the
	// order.proof_attached outbox event in one transaction.
	CompleteSession(ctx context.Context, id uuid.UUID, payload []byte) error
	FailSession(ctx context.Context, id uuid.UUID, reason string) error

	RecordEvent(ctx context.Context, aggregateID, eventType string, payload any) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID int64) error
	// GetStuckSessions finds sessions whose proof was attached but whose
	// completion never landed, so the poller can finish them.
	GetStuckSessions(ctx context.Context) ([]*CheckoutSession, error)
}
