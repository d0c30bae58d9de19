package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

const Exchange = "setalip.events"

const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingCheckedIn = "booking.checked_in"
	PackageApproved  = "package.approved"
	PackageRejected  = "package.rejected"
)

// Event is the envelope every message on the exchange carries.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher emits domain events after their transaction has committed.
// Delivery is best effort: a failed publish never undoes the business write.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data interface{}) error
	Close() error
}

// New connects to RabbitMQ, or returns a no-op publisher when url is empty.
func New(url string) (Publisher, error) {
	if url == "" {
		logger.Info("RABBITMQ_URL not set, domain events disabled")
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url, Exchange)
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	now      func() time.Time
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	body, err := json.Marshal(Event{Type: routingKey, OccurredAt: p.now().UTC(), Data: data})
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		metrics.RecordEvent(routingKey, "failed")
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	metrics.RecordEvent(routingKey, "success")
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

// PublishAsync fires the event without blocking the caller and logs failures.
func PublishAsync(p Publisher, routingKey string, data interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, routingKey, data); err != nil {
			logger.Warn("event publish failed", "routing_key", routingKey, "error", err)
		}
	}()
}
