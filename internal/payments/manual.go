package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/notify"
)

const (
	manualEarliestStart = 5
	manualLatestStart   = 23
	manualEarliestEnd   = 6
	manualLatestEnd     = 24
)

type ManualPlayerInput struct {
	Name   string
	Amount decimal.Decimal
}

type ManualUsageInput struct {
	Date          string
	StartTime     int
	EndTime       int
	Players       []ManualPlayerInput
	PaymentMethod Method
	Notes         string
}

func (in ManualUsageInput) validate() (time.Time, error) {
	usageDate, err := time.Parse(time.DateOnly, strings.TrimSpace(in.Date))
	if err != nil {
		return time.Time{}, invalid("date", "must be a YYYY-MM-DD date")
	}
	if in.StartTime < manualEarliestStart || in.StartTime > manualLatestStart {
		return time.Time{}, invalid("startTime", fmt.Sprintf("must be between %d and %d", manualEarliestStart, manualLatestStart))
	}
	if in.EndTime < manualEarliestEnd || in.EndTime > manualLatestEnd {
		return time.Time{}, invalid("endTime", fmt.Sprintf("must be between %d and %d", manualEarliestEnd, manualLatestEnd))
	}
	if in.EndTime <= in.StartTime {
		return time.Time{}, invalid("endTime", "must be after startTime")
	}
	if len(in.Players) == 0 {
		return time.Time{}, invalid("players", "at least one player is required")
	}
	for i, player := range in.Players {
		if strings.TrimSpace(player.Name) == "" {
			return time.Time{}, invalid(fmt.Sprintf("players[%d].name", i), "is required")
		}
		if !player.Amount.IsPositive() {
			return time.Time{}, invalid(fmt.Sprintf("players[%d].amount", i), "must be greater than zero")
		}
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return time.Time{}, invalid("paymentMethod", "must be one of cash, bank_transfer, gcash, coins")
	}
	return usageDate, nil
}

// CreateManualCourtUsage records out-of-band court usage as one pending
// manual payment per player, due the configured number of days after the
// usage date. Players that match a member are billed to that member;
// everyone else is billed to the superadmin entering the usage.
func (s *Service) CreateManualCourtUsage(ctx context.Context, actor Actor, in ManualUsageInput) ([]Payment, error) {
	if !actor.IsSuperadmin() {
		return nil, ErrPermissionDenied
	}
	usageDate, err := in.validate()
	if err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = MethodCash
	}

	now := s.clock()
	due := s.dueDate(usageDate)
	roster := make([]ManualPlayer, len(in.Players))
	for i, player := range in.Players {
		roster[i] = ManualPlayer{Name: strings.TrimSpace(player.Name), Amount: player.Amount}
	}

	var created []dbgen.Payment
	err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		members, names, err := rosterNames(ctx, q)
		if err != nil {
			return err
		}
		ids := make(map[string]int64, len(members))
		for _, m := range members {
			ids[m.FullName] = m.ID
		}

		confidence := make([]float64, len(roster))
		for i := range roster {
			result := s.deps.Matcher.Classify(roster[i].Name, names)
			if result.Matched {
				roster[i].MatchedMember = result.MatchedName
				confidence[i] = result.Confidence
			}
		}

		for i, player := range roster {
			payerID := actor.UserID
			if id, ok := ids[player.MatchedMember]; ok {
				payerID = id
			}
			meta := Metadata{
				IsManualPayment: true,
				PlayerName:      player.Name,
				MatchedMember:   player.MatchedMember,
				MatchConfidence: confidence[i],
				CourtUsageDate:  usageDate.Format(time.DateOnly),
				StartTime:       in.StartTime,
				EndTime:         in.EndTime,
				Players:         roster,
			}
			encoded, err := meta.Encode()
			if err != nil {
				return err
			}
			note := fmt.Sprintf("[%s] manual court usage %s %02d:00-%02d:00 for %s (%s)",
				now.Format(time.RFC3339), meta.CourtUsageDate, in.StartTime, in.EndTime, player.Name, actor.label())
			row, err := q.CreatePayment(ctx, dbgen.CreatePaymentParams{
				UserID:          payerID,
				IsManual:        true,
				Amount:          player.Amount,
				PaymentMethod:   string(method),
				Status:          string(StatusPending),
				DueDate:         due,
				ReferenceNumber: NewReferenceNumber(now),
				Notes:           AppendNote(AppendNote("", in.Notes, s.cfg.NotesMaxLength), note, s.cfg.NotesMaxLength),
				Metadata:        encoded,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			if err != nil {
				if db.IsConstraintError(err) {
					return errors.Join(invalid("referenceNumber", "could not allocate a unique reference"), err)
				}
				return fmt.Errorf("create manual payment for %q: %w", player.Name, err)
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := fromRows(created)
	if err != nil {
		return nil, err
	}
	logger := s.logger(ctx, actor)
	logger.Info().
		Str("usage_date", usageDate.Format(time.DateOnly)).
		Int("payment_count", len(out)).
		Msg("Manual court usage recorded")
	for _, p := range out {
		notify.Send(ctx, s.deps.Notifier, notify.EventPaymentCreated, p)
	}
	return out, nil
}
