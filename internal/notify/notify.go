package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

type Event string

const (
	EventPaymentCreated    Event = "payment.created"
	EventPaymentApproved   Event = "payment.approved"
	EventPaymentCompleted  Event = "payment.completed"
	EventPaymentRecorded   Event = "payment.recorded"
	EventPaymentUnrecorded Event = "payment.unrecorded"
	EventPaymentCancelled  Event = "payment.cancelled"
	EventPaymentUpdated    Event = "payment.updated"
	EventPaymentReconciled Event = "payment.reconciled"
	EventPaymentFailed     Event = "payment.failed"
)

// Notifier receives state-change events after the change has been committed.
// Callers log a returned error and carry on.
type Notifier interface {
	Notify(ctx context.Context, event Event, payload any) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event, payload any) error

func (f NotifierFunc) Notify(ctx context.Context, event Event, payload any) error {
	return f(ctx, event, payload)
}

// LogNotifier writes each event to the request logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event Event, payload any) error {
	log.Ctx(ctx).Info().
		Str("event", string(event)).
		Interface("payload", payload).
		Msg("Payment event")
	return nil
}

// Multi fans an event out to every sink. Every sink is called even when an
// earlier one fails.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event, payload any) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send delivers an event and logs a failure instead of returning it.
func Send(ctx context.Context, n Notifier, event Event, payload any) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event, payload); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", string(event)).Msg("Failed to deliver notification")
	}
}
