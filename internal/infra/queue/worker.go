package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

// WelcomeMailer sends the first-login e-mail to a newly created admin.
type WelcomeMailer interface {
	SendAdminWelcome(to, name, username string) error
}

// Consumer is the part of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

var errSkip = errors.New("nothing to send")

type Worker struct {
	ch     Consumer
	mailer WelcomeMailer
	logger *zap.Logger
}

func NewWorker(ch Consumer, mailer WelcomeMailer, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{ch: ch, mailer: mailer, logger: logger.With(zap.String("component", "welcome_worker"))}
}

// Start consumes WelcomeQueue until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.ch.Consume(WelcomeQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.logger.Info("worker waiting", zap.String("queue", WelcomeQueue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.settle(d, w.Handle(d.Body))
		}
	}
}

func (w *Worker) settle(d amqp.Delivery, err error) {
	switch {
	case err == nil, errors.Is(err, errSkip):
		if ackErr := d.Ack(false); ackErr != nil {
			w.logger.Warn("ack failed", zap.Error(ackErr))
		}
	default:
		w.logger.Error("welcome delivery rejected", zap.String("message_id", d.MessageId), zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			w.logger.Warn("nack failed", zap.Error(nackErr))
		}
	}
}

// Handle processes one admin.created envelope.
func (w *Worker) Handle(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	if env.Type != KeyAdminCreated {
		w.logger.Warn("unexpected event type", zap.String("type", env.Type))
		return errSkip
	}

	var event usecase.AdminEvent
	if err := json.Unmarshal(env.Data, &event); err != nil {
		return fmt.Errorf("invalid admin payload: %w", err)
	}
	if event.Email == "" {
		w.logger.Info("admin has no email, skipping welcome", zap.String("admin_id", event.AdminID))
		return errSkip
	}

	name := event.FirstName
	if event.LastName != "" {
		name = fmt.Sprintf("%s %s", event.FirstName, event.LastName)
	}
	if err := w.mailer.SendAdminWelcome(event.Email, name, event.Username); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}

	w.logger.Info("welcome sent", zap.String("admin_id", event.AdminID))
	return nil
}
