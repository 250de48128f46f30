package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSession(ctx context.Context, session *CheckoutSession) error {
	query := `INSERT INTO checkout_sessions (id, user_key, idempotency_key, status, cart_snapshot, failure_reason, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, '', NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserKey, session.IdempotencyKey, session.Status, session.CartSnapshot)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert checkout session: %w", err)
	}
	return nil
}

const sessionColumns = `id, user_key, idempotency_key, status, cart_snapshot, order_id, failure_reason, created_at, updated_at`

func (r *Repository) GetSessionByIdempotencyKey(ctx context.Context, key string) (*CheckoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE idempotency_key = $1`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdempotencyKeyNotFound
	}
	return session, err
}

func (r *Repository) GetSessionByOrderID(ctx context.Context, orderID uuid.UUID) (*CheckoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE order_id = $1`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (r *Repository) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status d.CheckoutStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return checkAffected(res)
}

func (r *Repository) MarkOrderCreated(ctx context.Context, id, orderID uuid.UUID, payload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = $1, order_id = $2, updated_at = NOW() WHERE id = $3`,
		d.CheckoutStatusOrderCreated, orderID, id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	if err := insertEvent(ctx, tx, id.String(), "order.created", payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) CompleteSession(ctx context.Context, id uuid.UUID, payload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = $1, updated_at = NOW() WHERE id = $2`,
		d.CheckoutStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}

	if err := insertEvent(ctx, tx, id.String(), "order.proof_attached", payload); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) FailSession(ctx context.Context, id uuid.UUID, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checkout_sessions SET status = $1, failure_reason = $2, updated_at = NOW() WHERE id = $3`,
		d.CheckoutStatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("fail session: %w", err)
	}
	return checkAffected(res)
}

func (r *Repository) RecordEvent(ctx context.Context, aggregateID, eventType string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := insertEvent(ctx, r.db, aggregateID, eventType, payloadJSON); err != nil {
		return err
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE NOT processed ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		ev := &OutboxEvent{}
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed = TRUE WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *Repository) GetStuckSessions(ctx context.Context) ([]*CheckoutSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM checkout_sessions
	          WHERE status = $1 AND updated_at < NOW() - INTERVAL '30 seconds'`

	rows, err := r.db.QueryContext(ctx, query, d.CheckoutStatusProofAttached)
	if err != nil {
		return nil, fmt.Errorf("query stuck sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*CheckoutSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, db execer, aggregateID, eventType string, payload []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload, processed, created_at)
		 VALUES ($1, $2, $3, FALSE, NOW())`,
		aggregateID, eventType, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*CheckoutSession, error) {
	session := &CheckoutSession{}
	var orderID uuid.NullUUID
	err := row.Scan(
		&session.ID,
		&session.UserKey,
		&session.IdempotencyKey,
		&session.Status,
		&session.CartSnapshot,
		&orderID,
		&session.FailureReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan checkout session: %w", err)
	}
	if orderID.Valid {
		session.OrderID = &orderID.UUID
	}
	return session, nil
}
