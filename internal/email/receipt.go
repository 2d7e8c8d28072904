package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/db"
	"github.com/codr1/Courtside/internal/notify"
	"github.com/codr1/Courtside/internal/payments"
)

const receiptEmailTimeout = 5 * time.Second

// ReceiptNotifier emails the payer when a payment is approved, completed or
// recorded. Delivery happens in the background; Notify only fails when the
// payer cannot be loaded.
type ReceiptNotifier struct {
	db     *db.DB
	sender Sender
	sent   func()
}

func NewReceiptNotifier(database *db.DB, sender Sender) (*ReceiptNotifier, error) {
	if database == nil {
		return nil, errors.New("receipt notifier requires a database")
	}
	if sender == nil {
		return nil, errors.New("receipt notifier requires a sender")
	}
	return &ReceiptNotifier{db: database, sender: sender}, nil
}

func (n *ReceiptNotifier) Notify(ctx context.Context, event notify.Event, payload any) error {
	payment, ok := payload.(payments.Payment)
	if !ok {
		return nil
	}
	switch event {
	case notify.EventPaymentApproved, notify.EventPaymentCompleted, notify.EventPaymentRecorded:
	default:
		return nil
	}

	user, err := n.db.Queries.GetUserByID(ctx, payment.UserID)
	if err != nil {
		return fmt.Errorf("load payer for receipt: %w", err)
	}
	if !user.Email.Valid {
		return nil
	}
	recipient := strings.TrimSpace(user.Email.String)
	if recipient == "" {
		return nil
	}
	msg, ok := BuildReceipt(event, payment, user.FullName)
	if !ok {
		return nil
	}

	logger := log.Ctx(ctx).With().
		Str("component", "receipt_email").
		Int64("payment_id", payment.ID).
		Str("event", string(event)).
		Logger()
	go func() {
		if n.sent != nil {
			defer n.sent()
		}
		// The request that triggered the event may finish before SES answers.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptEmailTimeout)
		defer cancel()
		if err := n.sender.Send(sendCtx, recipient, msg); err != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send payment receipt")
			return
		}
		logger.Debug().Str("recipient", recipient).Msg("Payment receipt sent")
	}()
	return nil
}
