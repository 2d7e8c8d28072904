package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/payments"
)

// OverdueSweeper flags active reservations whose pending payment is past due.
type OverdueSweeper struct {
	db *db.DB
}

func NewOverdueSweeper(database *db.DB) (*OverdueSweeper, error) {
	if database == nil {
		return nil, errors.New("overdue sweeper requires a database")
	}
	return &OverdueSweeper{db: database}, nil
}

// Sweep returns the IDs of reservations moved to overdue.
func (s *OverdueSweeper) Sweep(ctx context.Context, now time.Time) ([]int64, error) {
	now = now.UTC()
	ids, err := s.db.Queries.ListOverdueReservationIDs(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue reservations: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
		for _, id := range ids {
			if err := txdb.Queries.UpdateReservationPaymentStatus(ctx, dbgen.UpdateReservationPaymentStatusParams{
				PaymentStatus: payments.ReservationPaymentOverdue,
				UpdatedAt:     now,
				ID:            id,
			}); err != nil {
				return fmt.Errorf("mark reservation %d overdue: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("component", "overdue_sweeper").
		Int("count", len(ids)).
		Msg("Reservations marked overdue")
	return ids, nil
}
