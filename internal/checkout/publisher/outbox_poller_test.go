package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	r "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	stuckSessions    []*r.CheckoutSession
	getStuckErr      error
	completeErr      error
	completedIDs     []uuid.UUID
	completeCalls    int
	completePayloads [][]byte
}

func (m *mockRepository) CreateSession(context.Context, *r.CheckoutSession) error { return nil }

func (m *mockRepository) GetSessionByIdempotencyKey(context.Context, string) (*r.CheckoutSession, error) {
	return nil, r.ErrIdempotencyKeyNotFound
}

func (m *mockRepository) GetSessionByOrderID(context.Context, uuid.UUID) (*r.CheckoutSession, error) {
	return nil, r.ErrSessionNotFound
}

func (m *mockRepository) UpdateSessionStatus(context.Context, uuid.UUID, d.CheckoutStatus) error {
	return nil
}

func (m *mockRepository) MarkOrderCreated(context.Context, uuid.UUID, uuid.UUID, []byte) error {
	return nil
}

func (m *mockRepository) CompleteSession(_ context.Context, id uuid.UUID, payload []byte) error {
	m.completeCalls++
	if m.completeErr != nil {
		return m.completeErr
	}
	m.completedIDs = append(m.completedIDs, id)
	m.completePayloads = append(m.completePayloads, payload)
	return nil
}

func (m *mockRepository) FailSession(context.Context, uuid.UUID, string) error { return nil }

func (m *mockRepository) RecordEvent(context.Context, string, string, any) error { return nil }

func (m *mockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	return nil, nil
}

func (m *mockRepository) MarkEventAsProcessed(context.Context, int64) error { return nil }

func (m *mockRepository) GetStuckSessions(context.Context) ([]*r.CheckoutSession, error) {
	if m.getStuckErr != nil {
		return nil, m.getStuckErr
	}
	return m.stuckSessions, nil
}

func stuckSession(t *testing.T) *r.CheckoutSession {
	t.Helper()
	snapshot := &d.CartSnapshot{
		Items: []d.CartSnapshotItem{
			{ProductID: 1, ProductName: "Arduino Uno R3", Quantity: 1, UnitPrice: 50, Subtotal: 50},
		},
		TotalAmount: 50,
		Currency:    "PEN",
		CapturedAt:  time.Now(),
	}
	snapshotJSON, err := json.Marshal(snapshot)
	require.NoError(t, err)

	orderID := uuid.New()
	return &r.CheckoutSession{
		ID:             uuid.New(),
		UserKey:        "user-1",
		IdempotencyKey: "key-1",
		Status:         d.CheckoutStatusProofAttached,
		CartSnapshot:   snapshotJSON,
		OrderID:        &orderID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestRecoverStuckSessions_CompletesSession(t *testing.T) {
	session := stuckSession(t)
	repo := &mockRepository{stuckSessions: []*r.CheckoutSession{session}}

	poller := NewOutboxPoller(repo, zap.NewNop())
	poller.recoverStuckSessions(context.Background())

	require.Len(t, repo.completedIDs, 1)
	assert.Equal(t, session.ID, repo.completedIDs[0])

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(repo.completePayloads[0], &payload))
	assert.Equal(t, session.OrderID.String(), payload["order_id"])
	assert.Equal(t, 50.0, payload["total_amount"])
}

func TestRecoverStuckSessions_GetStuckSessionsError(t *testing.T) {
	repo := &mockRepository{getStuckErr: errors.New("database connection error")}

	poller := NewOutboxPoller(repo, zap.NewNop())
	poller.recoverStuckSessions(context.Background())

	assert.Equal(t, 0, repo.completeCalls)
}

func TestRecoverStuckSessions_EmptyList(t *testing.T) {
	repo := &mockRepository{}

	poller := NewOutboxPoller(repo, zap.NewNop())
	poller.recoverStuckSessions(context.Background())

	assert.Equal(t, 0, repo.completeCalls)
}

func TestRecoverStuckSessions_InvalidSnapshotSkipped(t *testing.T) {
	bad := stuckSession(t)
	bad.CartSnapshot = []byte(`{corrupted`)
	good := stuckSession(t)

	repo := &mockRepository{stuckSessions: []*r.CheckoutSession{bad, good}}

	poller := NewOutboxPoller(repo, zap.NewNop())
	poller.recoverStuckSessions(context.Background())

	// One failing session must not block the others
	require.Len(t, repo.completedIDs, 1)
	assert.Equal(t, good.ID, repo.completedIDs[0])
}

func TestRecoverStuckSessions_NonCompletableStatusSkipped(t *testing.T) {
	failed := stuckSession(t)
	failed.Status = d.CheckoutStatusFailed
	good := stuckSession(t)

	repo := &mockRepository{stuckSessions: []*r.CheckoutSession{failed, good}}

	poller := NewOutboxPoller(repo, zap.NewNop())
	poller.recoverStuckSessions(context.Background())

	// Only PROOF_ATTACHED may move to COMPLETED
	require.Len(t, repo.completedIDs, 1)
	assert.Equal(t, good.ID, repo.completedIDs[0])
}

func TestRecoverStuckSessions_CompleteError(t *testing.T) {
	session := stuckSession(t)
	repo := &mockRepository{
		stuckSessions: []*r.CheckoutSession{session},
		completeErr:   errors.New("database deadlock"),
	}

	poller := NewOutboxPoller(repo, zap.NewNop())
	poller.recoverStuckSessions(context.Background())

	assert.Equal(t, 1, repo.completeCalls)
	assert.Empty(t, repo.completedIDs)
}
