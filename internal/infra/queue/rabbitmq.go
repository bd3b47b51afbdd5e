package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.backoffice"
	DLXName      = "ex.backoffice.dlx"
	WelcomeQueue = "q.admin.welcome"
	WelcomeDLQ   = "q.admin.welcome.dlq"

	KeyLeadUpdated    = "lead.updated"
	KeyLeadDeleted    = "lead.deleted"
	KeyAdminCreated   = "admin.created"
	KeyMessageUpdated = "message.updated"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() error {
	_ = r.Ch.Close()
	return r.Conn.Close()
}

// setupTopology declares the event exchange and the welcome queue with its
// dead letter path. Rejected welcome deliveries land in WelcomeDLQ.
func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", DLXName, err)
	}
	if _, err := ch.QueueDeclare(WelcomeDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", WelcomeDLQ, err)
	}
	if err := ch.QueueBind(WelcomeDLQ, KeyAdminCreated, DLXName, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", WelcomeDLQ, err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", ExchangeName, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": KeyAdminCreated,
	}
	if _, err := ch.QueueDeclare(WelcomeQueue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare %s: %w", WelcomeQueue, err)
	}
	if err := ch.QueueBind(WelcomeQueue, KeyAdminCreated, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", WelcomeQueue, err)
	}
	return nil
}
