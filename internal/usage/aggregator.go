package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

var ErrReportNotFound = errors.New("court usage report not found")

type Report struct {
	ID             int64           `json:"id"`
	MemberName     string          `json:"memberName"`
	Year           int             `json:"year"`
	MonthlyAmounts MonthlyAmounts  `json:"monthlyAmounts"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func reportFromRow(row dbgen.CourtUsageReport) (Report, error) {
	amounts, err := ParseMonthlyAmounts(row.MonthlyAmounts)
	if err != nil {
		return Report{}, err
	}
	return Report{
		ID:             row.ID,
		MemberName:     row.MemberName,
		Year:           int(row.Year),
		MonthlyAmounts: amounts,
		TotalAmount:    row.TotalAmount,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

// Aggregator maintains per-member, per-year court usage totals from recorded
// payments.
type Aggregator struct {
	db  *db.DB
	now func() time.Time
}

func NewAggregator(database *db.DB) (*Aggregator, error) {
	if database == nil {
		return nil, errors.New("usage aggregator requires a database")
	}
	return &Aggregator{db: database, now: time.Now}, nil
}

// AddAmount adds amount to the member's bucket for date's month, creating
// the yearly report on first use. A blank member name is skipped.
func (a *Aggregator) AddAmount(ctx context.Context, memberName string, date time.Time, amount decimal.Decimal) error {
	return a.apply(ctx, memberName, date, amount, true)
}

// SubtractAmount removes amount from the member's bucket. The bucket is
// dropped once it reaches zero.
func (a *Aggregator) SubtractAmount(ctx context.Context, memberName string, date time.Time, amount decimal.Decimal) error {
	return a.apply(ctx, memberName, date, amount, false)
}

func (a *Aggregator) apply(ctx context.Context, memberName string, date time.Time, amount decimal.Decimal, add bool) error {
	memberName = strings.TrimSpace(memberName)
	logger := log.Ctx(ctx).With().
		Str("component", "usage_aggregator").
		Str("member_name", memberName).
		Str("month", MonthKey(date)).
		Str("amount", amount.String()).
		Bool("add", add).
		Logger()
	if memberName == "" {
		logger.Warn().Msg("Skipping usage update without a member name")
		return nil
	}
	if !amount.IsPositive() {
		logger.Warn().Msg("Skipping usage update with a non-positive amount")
		return nil
	}

	key := MonthKey(date)
	year := int64(date.Year())
	now := a.now().UTC()

	err := a.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		row, err := q.GetCourtUsageReport(ctx, dbgen.GetCourtUsageReportParams{MemberName: memberName, Year: year})
		if errors.Is(err, sql.ErrNoRows) {
			if !add {
				logger.Warn().Msg("No usage report to subtract from")
				return nil
			}
			amounts := MonthlyAmounts{}
			amounts.Add(key, amount)
			encoded, err := amounts.Encode()
			if err != nil {
				return err
			}
			_, err = q.CreateCourtUsageReport(ctx, dbgen.CreateCourtUsageReportParams{
				MemberName:     memberName,
				Year:           year,
				MonthlyAmounts: encoded,
				TotalAmount:    amounts.Total(),
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return fmt.Errorf("create usage report: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load usage report: %w", err)
		}

		amounts, err := ParseMonthlyAmounts(row.MonthlyAmounts)
		if err != nil {
			return err
		}
		if add {
			amounts.Add(key, amount)
		} else {
			amounts.Subtract(key, amount)
		}
		encoded, err := amounts.Encode()
		if err != nil {
			return err
		}
		_, err = q.UpdateCourtUsageReport(ctx, dbgen.UpdateCourtUsageReportParams{
			MonthlyAmounts: encoded,
			TotalAmount:    amounts.Total(),
			UpdatedAt:      now,
			ID:             row.ID,
		})
		if err != nil {
			return fmt.Errorf("update usage report: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to update usage report")
		return err
	}
	logger.Debug().Msg("Usage report updated")
	return nil
}

func (a *Aggregator) Get(ctx context.Context, memberName string, year int) (Report, error) {
	row, err := a.db.Queries.GetCourtUsageReport(ctx, dbgen.GetCourtUsageReportParams{
		MemberName: strings.TrimSpace(memberName),
		Year:       int64(year),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrReportNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("load usage report: %w", err)
	}
	return reportFromRow(row)
}

func (a *Aggregator) ListByYear(ctx context.Context, year int) ([]Report, error) {
	rows, err := a.db.Queries.ListCourtUsageReportsByYear(ctx, int64(year))
	if err != nil {
		return nil, fmt.Errorf("list usage reports: %w", err)
	}
	reports := make([]Report, 0, len(rows))
	for _, row := range rows {
		report, err := reportFromRow(row)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
