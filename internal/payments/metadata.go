package payments

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/pricing"
)

type Cancellation struct {
	Reason         string    `json:"reason"`
	CancelledBy    string    `json:"cancelledBy"`
	CancelledAt    time.Time `json:"cancelledAt"`
	PreviousStatus Status    `json:"previousStatus"`
}

type ManualPlayer struct {
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	MatchedMember string          `json:"matchedMember,omitempty"`
}

// Metadata is the structured side data stored with a payment.
type Metadata struct {
	FeeBreakdown        *pricing.Breakdown `json:"feeBreakdown,omitempty"`
	IsManualPayment     bool               `json:"isManualPayment,omitempty"`
	PlayerName          string             `json:"playerName,omitempty"`
	MatchedMember       string             `json:"matchedMember,omitempty"`
	MatchConfidence     float64            `json:"matchConfidence,omitempty"`
	CourtUsageDate      string             `json:"courtUsageDate,omitempty"`
	StartTime           int                `json:"startTime,omitempty"`
	EndTime             int                `json:"endTime,omitempty"`
	Players             []ManualPlayer     `json:"players,omitempty"`
	IsAdminOverride     bool               `json:"isAdminOverride,omitempty"`
	OriginalFee         *decimal.Decimal   `json:"originalFee,omitempty"`
	CoinTransactionID   string             `json:"coinTransactionId,omitempty"`
	RefundTransactionID string             `json:"refundTransactionId,omitempty"`
	GCashNumber         string             `json:"gcashNumber,omitempty"`
	SplitFromPaymentID  int64              `json:"splitFromPaymentId,omitempty"`
	Cancellation        *Cancellation      `json:"cancellation,omitempty"`
}

func ParseMetadata(raw string) (Metadata, error) {
	var m Metadata
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Metadata{}, fmt.Errorf("decode payment metadata: %w", err)
	}
	return m, nil
}

func (m Metadata) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode payment metadata: %w", err)
	}
	return string(b), nil
}

// UsageDate picks the date a recorded amount belongs to: the court usage
// date, then the payment date, then now.
func (m Metadata) UsageDate(paymentDate *time.Time, now time.Time) time.Time {
	if m.CourtUsageDate != "" {
		if d, err := time.Parse(time.DateOnly, m.CourtUsageDate); err == nil {
			return d
		}
	}
	if paymentDate != nil && !paymentDate.IsZero() {
		return *paymentDate
	}
	return now
}
