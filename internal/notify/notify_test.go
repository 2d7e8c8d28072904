package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func TestAMQPNotifierPublishesEnvelope(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	pub := &fakePublisher{}
	n := newAMQPNotifierWithPublisher(pub, "courtside.events", func() time.Time { return fixed })

	if err := n.Notify(context.Background(), EventPaymentRecorded, map[string]any{"paymentId": 7}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if pub.exchange != "courtside.events" {
		t.Fatalf("exchange = %q", pub.exchange)
	}
	if pub.key != "payment.recorded" {
		t.Fatalf("routing key = %q, want payment.recorded", pub.key)
	}
	if pub.msg.ContentType != "application/json" {
		t.Fatalf("content type = %q", pub.msg.ContentType)
	}

	var got struct {
		Event      string         `json:"event"`
		OccurredAt time.Time      `json:"occurredAt"`
		Payload    map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(pub.msg.Body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Event != "payment.recorded" || !got.OccurredAt.Equal(fixed) {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if got.Payload["paymentId"] != float64(7) {
		t.Fatalf("payload = %v", got.Payload)
	}
}

func TestAMQPNotifierWrapsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	n := newAMQPNotifierWithPublisher(pub, "x", time.Now)

	err := n.Notify(context.Background(), EventPaymentApproved, nil)
	if err == nil || !errors.Is(err, pub.err) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestMultiCallsEverySink(t *testing.T) {
	var calls []string
	failing := NotifierFunc(func(_ context.Context, event Event, _ any) error {
		calls = append(calls, "failing")
		return errors.New("boom")
	})
	ok := NotifierFunc(func(_ context.Context, event Event, _ any) error {
		calls = append(calls, "ok")
		return nil
	})

	err := Multi{failing, nil, ok}.Notify(context.Background(), EventPaymentCreated, nil)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(calls) != 2 || calls[0] != "failing" || calls[1] != "ok" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestSendSwallowsErrors(t *testing.T) {
	called := false
	n := NotifierFunc(func(context.Context, Event, any) error {
		called = true
		return errors.New("unreachable broker")
	})

	Send(context.Background(), n, EventPaymentFailed, nil)
	Send(context.Background(), nil, EventPaymentFailed, nil)

	if !called {
		t.Fatal("expected notifier to be called")
	}
}
