package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type envelope struct {
	Event      Event     `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// AMQPNotifier publishes events to a topic exchange using the event name as
// the routing key.
type AMQPNotifier struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       publisher
	closer   func() error
	exchange string
	now      func() time.Time
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
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
	return &AMQPNotifier{
		conn:     conn,
		ch:       ch,
		closer:   ch.Close,
		exchange: exchange,
		now:      time.Now,
	}, nil
}

func newAMQPNotifierWithPublisher(p publisher, exchange string, now func() time.Time) *AMQPNotifier {
	return &AMQPNotifier{ch: p, exchange: exchange, now: now}
}

func (n *AMQPNotifier) Notify(ctx context.Context, event Event, payload any) error {
	body, err := json.Marshal(envelope{Event: event, OccurredAt: n.now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ch.PublishWithContext(ctx, n.exchange, string(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.now().UTC(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.closer != nil {
		_ = n.closer()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
