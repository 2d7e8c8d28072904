package payments

import (
	"time"

	"github.com/shopspring/decimal"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

// Payment is the wire and service representation of a payments row.
type Payment struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	ReservationID   *int64          `json:"reservationId,omitempty"`
	PollID          *string         `json:"pollId,omitempty"`
	IsManual        bool            `json:"isManualPayment"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   Method          `json:"paymentMethod"`
	Status          Status          `json:"status"`
	DueDate         time.Time       `json:"dueDate"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty"`
	ReferenceNumber string          `json:"referenceNumber"`
	ApprovedBy      *int64          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RecordedBy      *int64          `json:"recordedBy,omitempty"`
	RecordedAt      *time.Time      `json:"recordedAt,omitempty"`
	Notes           string          `json:"notes"`
	Metadata        Metadata        `json:"metadata"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// IsOverdue reports whether a pending payment is past its due date.
func (p Payment) IsOverdue(now time.Time) bool {
	return p.Status == StatusPending && now.After(p.DueDate)
}

func FromRow(row dbgen.Payment) (Payment, error) {
	meta, err := ParseMetadata(row.Metadata)
	if err != nil {
		return Payment{}, err
	}

	p := Payment{
		ID:              row.ID,
		UserID:          row.UserID,
		IsManual:        row.IsManual,
		Amount:          row.Amount,
		PaymentMethod:   Method(row.PaymentMethod),
		Status:          Status(row.Status),
		DueDate:         row.DueDate,
		ReferenceNumber: row.ReferenceNumber,
		Notes:           row.Notes,
		Metadata:        meta,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.ReservationID.Valid {
		id := row.ReservationID.Int64
		p.ReservationID = &id
	}
	if row.PollID.Valid {
		poll := row.PollID.String
		p.PollID = &poll
	}
	if row.PaymentDate.Valid {
		t := row.PaymentDate.Time
		p.PaymentDate = &t
	}
	if row.ApprovedBy.Valid {
		id := row.ApprovedBy.Int64
		p.ApprovedBy = &id
	}
	if row.ApprovedAt.Valid {
		t := row.ApprovedAt.Time
		p.ApprovedAt = &t
	}
	if row.RecordedBy.Valid {
		id := row.RecordedBy.Int64
		p.RecordedBy = &id
	}
	if row.RecordedAt.Valid {
		t := row.RecordedAt.Time
		p.RecordedAt = &t
	}
	return p, nil
}

func fromRows(rows []dbgen.Payment) ([]Payment, error) {
	out := make([]Payment, 0, len(rows))
	for _, row := range rows {
		p, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
