package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

var _ usecase.EventPublisher = (*Producer)(nil)

// Publisher is the part of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Envelope wraps every event published on ExchangeName.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type Producer struct {
	ch     Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewProducer(ch Publisher, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{ch: ch, logger: logger.With(zap.String("component", "producer")), now: time.Now}
}

func (p *Producer) PublishLeadEvent(ctx context.Context, event usecase.LeadEvent) error {
	key := KeyLeadUpdated
	if event.Action == "deleted" {
		key = KeyLeadDeleted
	}
	return p.publish(ctx, key, event)
}

func (p *Producer) PublishAdminCreated(ctx context.Context, event usecase.AdminEvent) error {
	return p.publish(ctx, KeyAdminCreated, event)
}

func (p *Producer) PublishMessageUpdated(ctx context.Context, event usecase.MessageEvent) error {
	return p.publish(ctx, KeyMessageUpdated, event)
}

func (p *Producer) publish(ctx context.Context, key string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", key, err)
	}
	env := Envelope{ID: uuid.NewString(), Type: key, OccurredAt: p.now().UTC(), Data: raw}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", key, err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    env.ID,
			Type:         key,
			Timestamp:    env.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	p.logger.Debug("event published", zap.String("type", key), zap.String("event_id", env.ID))
	return nil
}
