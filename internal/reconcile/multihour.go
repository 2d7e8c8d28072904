package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/notify"
	"github.com/codr1/Courtside/internal/payments"
)

const DefaultLookback = 24 * time.Hour

// Item is one line of an audit report.
type Item struct {
	ReservationID   int64           `json:"reservationId"`
	PaymentID       int64           `json:"paymentId,omitempty"`
	SourcePaymentID int64           `json:"sourcePaymentId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Action          string          `json:"action"`
	Reason          string          `json:"reason,omitempty"`
}

type Report struct {
	UserID   int64    `json:"userId"`
	Examined int      `json:"examined"`
	Split    int      `json:"split"`
	Items    []Item   `json:"items"`
	Errors   []string `json:"errors"`
}

type Options struct {
	NotesMaxLength int
	Now            func() time.Time
}

// MultiHour repairs hourly reservations of one booking session that were
// left unpaid while a sibling hour's payment covered the whole session. Two
// reservations belong to the same session when they share a date, an
// identical player list and an identical fee.
type MultiHour struct {
	db       *db.DB
	notifier notify.Notifier
	notesMax int
	now      func() time.Time
}

func NewMultiHour(database *db.DB, notifier notify.Notifier, opts Options) (*MultiHour, error) {
	if database == nil {
		return nil, errors.New("multi-hour reconciler requires a database")
	}
	if opts.NotesMaxLength <= 0 {
		opts.NotesMaxLength = payments.DefaultConfig().NotesMaxLength
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MultiHour{db: database, notifier: notifier, notesMax: opts.NotesMaxLength, now: opts.Now}, nil
}

// Reconcile never returns an error. Failures land in Report.Errors and the
// next run picks up whatever is still unpaid.
func (m *MultiHour) Reconcile(ctx context.Context, userID int64, lookback time.Duration) Report {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	logger := log.Ctx(ctx).With().
		Str("component", "multi_hour_reconciler").
		Int64("user_id", userID).
		Logger()
	report := Report{UserID: userID, Items: []Item{}, Errors: []string{}}

	since := m.now().UTC().Add(-lookback)
	pending, err := m.db.Queries.ListPendingPaymentReservationsByUserSince(ctx, dbgen.ListPendingPaymentReservationsByUserSinceParams{
		UserID:    userID,
		CreatedAt: since,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list pending reservations")
		report.Errors = append(report.Errors, fmt.Sprintf("list pending reservations: %v", err))
		return report
	}

	for _, res := range pending {
		report.Examined++
		item, err := m.reconcileOne(ctx, logger, res)
		if err != nil {
			logger.Warn().Err(err).Int64("reservation_id", res.ID).Msg("Multi-hour reconciliation failed")
			report.Errors = append(report.Errors, fmt.Sprintf("reservation %d: %v", res.ID, err))
			continue
		}
		if item == nil {
			continue
		}
		report.Items = append(report.Items, *item)
		report.Split++
	}

	if report.Split > 0 || len(report.Errors) > 0 {
		logger.Info().
			Int("examined", report.Examined).
			Int("split", report.Split).
			Int("errors", len(report.Errors)).
			Msg("Multi-hour reconciliation finished")
	}
	return report
}

// reconcileOne splits at most one sibling payment. The sibling payment is
// read fresh inside the transaction so consecutive hours of one session each
// see the amount left by the previous split.
func (m *MultiHour) reconcileOne(ctx context.Context, logger zerolog.Logger, res dbgen.Reservation) (*Item, error) {
	siblings, err := m.db.Queries.ListReservationsByDate(ctx, res.Date)
	if err != nil {
		return nil, fmt.Errorf("list same-day reservations: %w", err)
	}

	for _, sibling := range siblings {
		if sibling.ID == res.ID || sibling.PaymentStatus != payments.ReservationPaymentPaid {
			continue
		}
		if sibling.Status == payments.ReservationStatusCancelled {
			continue
		}
		if sibling.Players != res.Players || !sibling.TotalFee.Equal(res.TotalFee) {
			continue
		}

		var item *Item
		var split dbgen.Payment
		err := m.db.RunInTx(ctx, func(txdb *db.DB) error {
			var err error
			item, split, err = m.split(ctx, txdb.Queries, res, sibling)
			return err
		})
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}

		logger.Info().
			Int64("reservation_id", res.ID).
			Int64("payment_id", item.PaymentID).
			Int64("source_payment_id", item.SourcePaymentID).
			Str("amount", item.Amount.String()).
			Msg("Split multi-hour payment")
		if payment, err := payments.FromRow(split); err == nil {
			notify.Send(ctx, m.notifier, notify.EventPaymentReconciled, payment)
		}
		return item, nil
	}
	return nil, nil
}

func (m *MultiHour) split(ctx context.Context, q *dbgen.Queries, res, sibling dbgen.Reservation) (*Item, dbgen.Payment, error) {
	current, err := q.GetReservationByID(ctx, res.ID)
	if err != nil {
		return nil, dbgen.Payment{}, fmt.Errorf("reload reservation: %w", err)
	}
	if current.PaymentStatus != payments.ReservationPaymentPending {
		return nil, dbgen.Payment{}, nil
	}
	if _, err := q.GetActivePaymentForReservation(ctx, sql.NullInt64{Int64: res.ID, Valid: true}); err == nil {
		return nil, dbgen.Payment{}, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, dbgen.Payment{}, fmt.Errorf("check active payment: %w", err)
	}

	// A recorded payment is already in the usage report and the books. It is
	// split only after an admin unrecords it.
	source, err := q.GetCompletedPaymentForReservation(ctx, sql.NullInt64{Int64: sibling.ID, Valid: true})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dbgen.Payment{}, nil
	}
	if err != nil {
		return nil, dbgen.Payment{}, fmt.Errorf("load sibling payment: %w", err)
	}
	fee := res.TotalFee
	if !fee.IsPositive() || !source.Amount.GreaterThan(fee) {
		return nil, dbgen.Payment{}, nil
	}

	now := m.now().UTC()
	stamp := now.Format(time.RFC3339)
	remaining := source.Amount.Sub(fee)

	sourceMeta, err := payments.ParseMetadata(source.Metadata)
	if err != nil {
		return nil, dbgen.Payment{}, err
	}
	_, err = q.UpdateCompletedPaymentAmount(ctx, dbgen.UpdateCompletedPaymentAmountParams{
		Amount: remaining,
		Notes: payments.AppendNote(source.Notes, fmt.Sprintf("[%s] split %s to reservation %d (system)",
			stamp, fee.StringFixed(2), res.ID), m.notesMax),
		Metadata:       source.Metadata,
		UpdatedAt:      now,
		ID:             source.ID,
		ExpectedAmount: source.Amount,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dbgen.Payment{}, fmt.Errorf("payment %d changed during split", source.ID)
	}
	if err != nil {
		return nil, dbgen.Payment{}, fmt.Errorf("reduce sibling payment: %w", err)
	}

	meta := payments.Metadata{
		CourtUsageDate:     res.Date,
		SplitFromPaymentID: source.ID,
		CoinTransactionID:  sourceMeta.CoinTransactionID,
		GCashNumber:        sourceMeta.GCashNumber,
	}
	encoded, err := meta.Encode()
	if err != nil {
		return nil, dbgen.Payment{}, err
	}
	created, err := q.CreatePayment(ctx, dbgen.CreatePaymentParams{
		UserID:          source.UserID,
		ReservationID:   sql.NullInt64{Int64: res.ID, Valid: true},
		Amount:          fee,
		PaymentMethod:   source.PaymentMethod,
		Status:          string(payments.StatusCompleted),
		DueDate:         source.DueDate,
		PaymentDate:     source.PaymentDate,
		ReferenceNumber: payments.NewReferenceNumber(now),
		Notes:           fmt.Sprintf("[%s] split from payment %d (system)", stamp, source.ID),
		Metadata:        encoded,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, dbgen.Payment{}, fmt.Errorf("create split payment: %w", err)
	}

	if err := q.UpdateReservationPaymentStatus(ctx, dbgen.UpdateReservationPaymentStatusParams{
		PaymentStatus: payments.ReservationPaymentPaid,
		UpdatedAt:     now,
		ID:            res.ID,
	}); err != nil {
		return nil, dbgen.Payment{}, fmt.Errorf("mark reservation paid: %w", err)
	}

	return &Item{
		ReservationID:   res.ID,
		PaymentID:       created.ID,
		SourcePaymentID: source.ID,
		Amount:          fee,
		Action:          "split",
	}, created, nil
}
