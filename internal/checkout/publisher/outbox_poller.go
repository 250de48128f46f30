package publisher

import (
	"context"
	"encoding/json"
	"time"

	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	r "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const topic = "order-events"

// OutboxPoller drains the outbox table into Kafka and finishes sessions whose
// proof was attached but whose completion never landed.
type OutboxPoller struct {
	eventTick    time.Duration
	recoveryTick time.Duration
	repo         r.RepoInterface
	writer       *kafka.Writer
	logger       *zap.Logger
}

func NewOutboxPoller(repo r.RepoInterface, logger *zap.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		eventTick:    time.Second,
		recoveryTick: time.Second * 5,
		repo:         repo,
		writer:       w,
		logger:       logger,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckSessions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		p.logger.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publishToKafka(ctx, event); err != nil {
			p.logger.Error("failed to publish event",
				zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.logger.Error("failed to mark event as processed",
				zap.Int64("event_id", event.ID), zap.Error(err))
		}
	}
}

// recoverStuckSessions finishes sessions stuck in PROOF_ATTACHED: the proof
// upload succeeded but the COMPLETED write (and its outbox event) did not.
func (p *OutboxPoller) recoverStuckSessions(ctx context.Context) {
	sessions, err := p.repo.GetStuckSessions(ctx)
	if err != nil {
		p.logger.Error("failed to get stuck sessions", zap.Error(err))
		return
	}
	for _, session := range sessions {
		p.logger.Info("recovering stuck session", zap.String("checkout_id", session.ID.String()))

		if !d.CanTransitionTo(session.Status, d.CheckoutStatusCompleted) {
			p.logger.Warn("stuck session is not completable",
				zap.String("checkout_id", session.ID.String()),
				zap.String("status", session.Status.String()))
			continue
		}

		var snapshot d.CartSnapshot
		if err := json.Unmarshal(session.CartSnapshot, &snapshot); err != nil {
			p.logger.Error("failed to unmarshal cart snapshot",
				zap.String("checkout_id", session.ID.String()), zap.Error(err))
			continue
		}

		payload := map[string]interface{}{
			"checkout_id":  session.ID.String(),
			"user_key":     session.UserKey,
			"items":        snapshot.Items,
			"total_amount": snapshot.TotalAmount,
			"currency":     snapshot.Currency,
			"attached_at":  session.UpdatedAt,
		}
		if session.OrderID != nil {
			payload["order_id"] = session.OrderID.String()
		}

		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			p.logger.Error("failed to marshal recovery payload",
				zap.String("checkout_id", session.ID.String()), zap.Error(err))
			continue
		}

		if err := p.repo.CompleteSession(ctx, session.ID, payloadJSON); err != nil {
			p.logger.Error("failed to complete session in poller",
				zap.String("checkout_id", session.ID.String()), zap.Error(err))
			continue
		}

		p.logger.Info("session recovered", zap.String("checkout_id", session.ID.String()))
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *r.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // checkout_id for ordering
		Value: event.Payload,             // Already JSON from database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
