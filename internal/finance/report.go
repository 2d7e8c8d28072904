package finance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

type Report struct {
	TotalRecorded decimal.Decimal `json:"totalRecorded"`
	AppServiceFee decimal.Decimal `json:"appServiceFee"`
	CourtRevenue  decimal.Decimal `json:"courtRevenue"`
	RecordedCount int64           `json:"recordedCount"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Recalculator rebuilds the single financial report row from every recorded
// payment. Concurrent rebuilds overwrite each other; the last one wins.
type Recalculator struct {
	db   *db.DB
	rate decimal.Decimal
	now  func() time.Time
}

func NewRecalculator(database *db.DB, serviceFeeRate decimal.Decimal) (*Recalculator, error) {
	if database == nil {
		return nil, errors.New("finance recalculator requires a database")
	}
	if !serviceFeeRate.IsPositive() || serviceFeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("service fee rate %s must be between 0 and 1", serviceFeeRate)
	}
	return &Recalculator{db: database, rate: serviceFeeRate, now: time.Now}, nil
}

func (r *Recalculator) Recalculate(ctx context.Context) error {
	_, err := r.Rebuild(ctx)
	return err
}

// Rebuild splits the recorded total into the app service fee (rounded to
// cents) and the court revenue remainder.
func (r *Recalculator) Rebuild(ctx context.Context) (Report, error) {
	amounts, err := r.db.Queries.ListRecordedPaymentAmounts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list recorded amounts: %w", err)
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	fee := total.Mul(r.rate).Round(2)
	revenue := total.Sub(fee)

	row, err := r.db.Queries.UpsertFinancialReport(ctx, dbgen.UpsertFinancialReportParams{
		TotalRecorded: total,
		AppServiceFee: fee,
		CourtRevenue:  revenue,
		RecordedCount: int64(len(amounts)),
		UpdatedAt:     r.now().UTC(),
	})
	if err != nil {
		return Report{}, fmt.Errorf("save financial report: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("component", "finance").
		Str("total_recorded", total.String()).
		Str("app_service_fee", fee.String()).
		Int("recorded_count", len(amounts)).
		Msg("Financial report recalculated")
	return fromRow(row), nil
}

// Current returns the stored report, or an empty one if nothing has been
// recorded yet.
func (r *Recalculator) Current(ctx context.Context) (Report, error) {
	row, err := r.db.Queries.GetFinancialReport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{TotalRecorded: decimal.Zero, AppServiceFee: decimal.Zero, CourtRevenue: decimal.Zero}, nil
	}
	if err != nil {
		return Report{}, fmt.Errorf("load financial report: %w", err)
	}
	return fromRow(row), nil
}

func fromRow(row dbgen.FinancialReport) Report {
	return Report{
		TotalRecorded: row.TotalRecorded,
		AppServiceFee: row.AppServiceFee,
		CourtRevenue:  row.CourtRevenue,
		RecordedCount: row.RecordedCount,
		UpdatedAt:     row.UpdatedAt,
	}
}
