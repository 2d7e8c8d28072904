package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/db"
	"github.com/codr1/Courtside/internal/payments"
)

// PaymentFailer closes a payment as failed.
type PaymentFailer interface {
	Fail(ctx context.Context, actor payments.Actor, id int64, reason string) (payments.Payment, error)
}

type CleanupReport struct {
	Scanned int      `json:"scanned"`
	Cleaned int      `json:"cleaned"`
	Skipped int      `json:"skipped"`
	Items   []Item   `json:"items"`
	Errors  []string `json:"errors"`
}

// OrphanCleaner fails pending reservation payments whose reservation is gone
// or whose booking lifecycle finished without them. Poll and manual payments
// are never touched.
type OrphanCleaner struct {
	db     *db.DB
	failer PaymentFailer
}

func NewOrphanCleaner(database *db.DB, failer PaymentFailer) (*OrphanCleaner, error) {
	if database == nil {
		return nil, errors.New("orphan cleaner requires a database")
	}
	if failer == nil {
		return nil, errors.New("orphan cleaner requires a payment service")
	}
	return &OrphanCleaner{db: database, failer: failer}, nil
}

func (c *OrphanCleaner) Cleanup(ctx context.Context) CleanupReport {
	logger := log.Ctx(ctx).With().Str("component", "orphan_cleaner").Logger()
	report := CleanupReport{Items: []Item{}, Errors: []string{}}

	rows, err := c.db.Queries.ListPendingReservationPayments(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list pending reservation payments")
		report.Errors = append(report.Errors, fmt.Sprintf("list pending payments: %v", err))
		return report
	}

	for _, row := range rows {
		report.Scanned++
		if !row.ReservationID.Valid {
			report.Skipped++
			continue
		}
		reservationID := row.ReservationID.Int64

		reason := ""
		res, err := c.db.Queries.GetReservationByID(ctx, reservationID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			reason = "reservation no longer exists"
		case err != nil:
			report.Errors = append(report.Errors, fmt.Sprintf("payment %d: load reservation: %v", row.ID, err))
			continue
		case res.Status == payments.ReservationStatusCancelled:
			reason = "reservation was cancelled"
		case res.Status == payments.ReservationStatusCompleted:
			reason = "reservation completed without payment"
		}
		if reason == "" {
			report.Skipped++
			continue
		}

		failed, err := c.failer.Fail(ctx, payments.SystemActor, row.ID, "orphan cleanup: "+reason)
		if err != nil {
			logger.Warn().Err(err).Int64("payment_id", row.ID).Msg("Failed to close orphaned payment")
			report.Errors = append(report.Errors, fmt.Sprintf("payment %d: %v", row.ID, err))
			continue
		}
		report.Cleaned++
		report.Items = append(report.Items, Item{
			ReservationID: reservationID,
			PaymentID:     failed.ID,
			Amount:        failed.Amount,
			Action:        "failed",
			Reason:        reason,
		})
	}

	logger.Info().
		Int("scanned", report.Scanned).
		Int("cleaned", report.Cleaned).
		Int("skipped", report.Skipped).
		Int("errors", len(report.Errors)).
		Msg("Orphan payment cleanup finished")
	return report
}
