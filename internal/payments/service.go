package payments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/coins"
	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/matcher"
	"github.com/codr1/Courtside/internal/notify"
	"github.com/codr1/Courtside/internal/pricing"
)

type Config struct {
	DueDaysAfterUsage int
	NotesMaxLength    int
}

func DefaultConfig() Config {
	return Config{DueDaysAfterUsage: 1, NotesMaxLength: 500}
}

// UsageRecorder keeps the per-member monthly usage totals.
type UsageRecorder interface {
	AddAmount(ctx context.Context, memberName string, date time.Time, amount decimal.Decimal) error
	SubtractAmount(ctx context.Context, memberName string, date time.Time, amount decimal.Decimal) error
}

// ReportRecalculator rebuilds the shared financial report.
type ReportRecalculator interface {
	Recalculate(ctx context.Context) error
}

// CoinLedger moves coins inside the caller's transaction.
type CoinLedger interface {
	DebitWithin(ctx context.Context, txdb *db.DB, userID int64, amount decimal.Decimal, reference string) (string, error)
	CreditWithin(ctx context.Context, txdb *db.DB, userID int64, amount decimal.Decimal, reference string) (string, error)
}

type Deps struct {
	Calculator *pricing.Calculator
	Matcher    pricing.Classifier
	Usage      UsageRecorder
	Finance    ReportRecalculator
	Notifier   notify.Notifier
	Coins      CoinLedger
	Now        func() time.Time
}

// Service owns payment rows and every status transition applied to them.
// Payment and reservation writes of one operation share a transaction; usage
// totals, the financial report and notifications follow after commit and
// never fail the operation.
type Service struct {
	db   *db.DB
	cfg  Config
	deps Deps
	now  func() time.Time
}

func NewService(database *db.DB, cfg Config, deps Deps) (*Service, error) {
	if database == nil {
		return nil, errors.New("payment service requires a database")
	}
	defaults := DefaultConfig()
	if cfg.DueDaysAfterUsage < 0 {
		cfg.DueDaysAfterUsage = defaults.DueDaysAfterUsage
	}
	if cfg.NotesMaxLength <= 0 {
		cfg.NotesMaxLength = defaults.NotesMaxLength
	}
	if deps.Matcher == nil {
		deps.Matcher = matcher.New(matcher.DefaultConfig())
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{db: database, cfg: cfg, deps: deps, now: now}, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) logger(ctx context.Context, actor Actor) zerolog.Logger {
	return log.Ctx(ctx).With().
		Str("component", "payment_ledger").
		Int64("actor_id", actor.UserID).
		Str("actor_role", string(actor.Role)).
		Logger()
}

type CreateInput struct {
	// UserID is the payer. Zero means the actor; admins may pay for others.
	UserID          int64
	ReservationID   *int64
	PollID          string
	IsManualPayment bool
	Amount          *decimal.Decimal
	PaymentMethod   Method
	ReferenceNumber string
	Notes           string
	GCashNumber     string
	// Pending keeps an off-band payment waiting for admin approval.
	Pending        bool
	PlayerName     string
	CourtUsageDate string
}

// Create stores a new payment. Exactly one of ReservationID, PollID or
// IsManualPayment must be set. Off-band methods settle immediately unless
// Pending is set; coin payments are debited through Process right away.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (Payment, error) {
	if !in.PaymentMethod.Valid() {
		return Payment{}, invalid("paymentMethod", "must be one of cash, bank_transfer, gcash, coins")
	}
	hasReservation := in.ReservationID != nil
	hasPoll := strings.TrimSpace(in.PollID) != ""
	switch {
	case in.IsManualPayment && (hasReservation || hasPoll):
		return Payment{}, invalid("isManualPayment", "manual payments cannot reference a reservation or poll")
	case hasReservation && hasPoll:
		return Payment{}, invalid("reservationId", "reservationId and pollId are mutually exclusive")
	case !in.IsManualPayment && !hasReservation && !hasPoll:
		return Payment{}, invalid("reservationId", "one of reservationId, pollId or isManualPayment is required")
	}
	if in.IsManualPayment && !actor.IsAdmin() {
		return Payment{}, ErrPermissionDenied
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return Payment{}, invalid("amount", "must be greater than zero")
	}

	payerID := actor.UserID
	if in.UserID != 0 && in.UserID != actor.UserID {
		if !actor.IsAdmin() {
			return Payment{}, ErrPermissionDenied
		}
		payerID = in.UserID
	}

	meta := Metadata{}
	if in.GCashNumber != "" {
		normalized, err := NormalizeGCashNumber(in.GCashNumber)
		if err != nil {
			return Payment{}, err
		}
		meta.GCashNumber = normalized
	}
	var usageDate time.Time
	if in.CourtUsageDate != "" {
		d, err := time.Parse(time.DateOnly, in.CourtUsageDate)
		if err != nil {
			return Payment{}, invalid("courtUsageDate", "must be a YYYY-MM-DD date")
		}
		usageDate = d
	}

	now := s.clock()
	reference := strings.TrimSpace(in.ReferenceNumber)
	if reference == "" {
		reference = NewReferenceNumber(now)
	}
	status := StatusCompleted
	if in.Pending || in.IsManualPayment || in.PaymentMethod == MethodCoins {
		status = StatusPending
	}
	notes := AppendNote("", in.Notes, s.cfg.NotesMaxLength)
	logger := s.logger(ctx, actor)

	var created dbgen.Payment
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		user, err := q.GetUserByID(ctx, payerID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("load payer: %w", err)
		}
		if meta.GCashNumber == "" && in.PaymentMethod == MethodGCash && user.GcashNumber.Valid {
			if normalized, err := NormalizeGCashNumber(user.GcashNumber.String); err == nil {
				meta.GCashNumber = normalized
			}
		}

		var amount decimal.Decimal
		if in.Amount != nil {
			amount = *in.Amount
		}
		dueBase := now
		var reservationID sql.NullInt64

		switch {
		case hasReservation:
			res, err := q.GetReservationByID(ctx, *in.ReservationID)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			if err != nil {
				return fmt.Errorf("load reservation: %w", err)
			}
			if !actor.IsAdmin() && res.UserID != actor.UserID {
				return ErrPermissionDenied
			}
			if res.Status == ReservationStatusCancelled {
				return invalid("reservationId", "reservation is cancelled")
			}
			active, err := q.GetActivePaymentForReservation(ctx, nullInt(res.ID))
			if err == nil {
				return &StateConflictError{Action: ActionCreate, Status: Status(active.Status), Reason: "reservation already has an active payment"}
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check active payment: %w", err)
			}

			if in.Amount == nil {
				amount = res.TotalFee
			} else if !in.Amount.Equal(res.TotalFee) {
				original := res.TotalFee
				meta.OriginalFee = &original
				meta.IsAdminOverride = actor.IsAdmin()
				notes = AppendNote(notes, fmt.Sprintf("[%s] custom amount %s replaces fee %s (%s)",
					now.Format(time.RFC3339), amount.StringFixed(2), original.StringFixed(2), actor.label()), s.cfg.NotesMaxLength)
			}
			if !amount.IsPositive() {
				return invalid("amount", "reservation has no fee to pay")
			}
			meta.CourtUsageDate = res.Date
			meta.FeeBreakdown = s.breakdownFor(ctx, q, res)
			if d, err := time.Parse(time.DateOnly, res.Date); err == nil {
				dueBase = d
			}
			reservationID = nullInt(res.ID)
		case hasPoll:
			if in.Amount == nil {
				return invalid("amount", "is required for poll payments")
			}
		default:
			if in.Amount == nil {
				return invalid("amount", "is required for manual payments")
			}
			meta.IsManualPayment = true
			meta.PlayerName = strings.TrimSpace(in.PlayerName)
			if meta.PlayerName == "" {
				meta.PlayerName = user.FullName
			}
			_, names, err := rosterNames(ctx, q)
			if err != nil {
				return err
			}
			if result := s.deps.Matcher.Classify(meta.PlayerName, names); result.Matched {
				meta.MatchedMember = result.MatchedName
				meta.MatchConfidence = result.Confidence
			}
		}
		if !usageDate.IsZero() {
			meta.CourtUsageDate = in.CourtUsageDate
			dueBase = usageDate
		}

		encoded, err := meta.Encode()
		if err != nil {
			return err
		}
		params := dbgen.CreatePaymentParams{
			UserID:          payerID,
			ReservationID:   reservationID,
			PollID:          nullString(in.PollID),
			IsManual:        in.IsManualPayment,
			Amount:          amount,
			PaymentMethod:   string(in.PaymentMethod),
			Status:          string(status),
			DueDate:         s.dueDate(dueBase),
			ReferenceNumber: reference,
			Notes:           notes,
			Metadata:        encoded,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if status == StatusCompleted {
			params.PaymentDate = nullTime(now)
		}
		created, err = q.CreatePayment(ctx, params)
		if err != nil {
			if db.IsConstraintError(err) {
				return invalid("referenceNumber", "is already in use")
			}
			return fmt.Errorf("create payment: %w", err)
		}

		if status == StatusCompleted && reservationID.Valid {
			if err := setReservationPaymentStatus(ctx, q, reservationID.Int64, ReservationPaymentPaid, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Payment create rejected")
		return Payment{}, err
	}

	payment, err := FromRow(created)
	if err != nil {
		return Payment{}, err
	}
	logger.Info().
		Int64("payment_id", payment.ID).
		Str("status", string(payment.Status)).
		Str("amount", payment.Amount.String()).
		Msg("Payment created")

	notify.Send(ctx, s.deps.Notifier, notify.EventPaymentCreated, payment)
	if payment.Status == StatusCompleted {
		notify.Send(ctx, s.deps.Notifier, notify.EventPaymentCompleted, payment)
	}

	if in.PaymentMethod == MethodCoins && !in.Pending {
		return s.Process(ctx, actor, payment.ID)
	}
	return payment, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id int64) (Payment, error) {
	row, err := loadPayment(ctx, s.db.Queries, id)
	if err != nil {
		return Payment{}, err
	}
	if err := authorize(actor, row); err != nil {
		return Payment{}, err
	}
	return FromRow(row)
}

type ListFilter struct {
	UserID int64
	Status Status
	Page   int
	Limit  int
}

type ListResult struct {
	Payments []Payment `json:"payments"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// List pages through payments. Members only ever see their own rows.
func (s *Service) List(ctx context.Context, actor Actor, filter ListFilter) (ListResult, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return ListResult{}, invalid("status", "is not a payment status")
	}
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	userID := sql.NullInt64{Int64: filter.UserID, Valid: filter.UserID != 0}
	status := nullString(string(filter.Status))

	rows, err := s.db.Queries.ListPayments(ctx, dbgen.ListPaymentsParams{
		UserID: userID,
		Status: status,
		Limit:  int64(filter.Limit),
		Offset: int64((filter.Page - 1) * filter.Limit),
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list payments: %w", err)
	}
	total, err := s.db.Queries.CountPayments(ctx, dbgen.CountPaymentsParams{UserID: userID, Status: status})
	if err != nil {
		return ListResult{}, fmt.Errorf("count payments: %w", err)
	}
	payments, err := fromRows(rows)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Payments: payments, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *Service) ListMine(ctx context.Context, actor Actor, filter ListFilter) (ListResult, error) {
	filter.UserID = actor.UserID
	return s.List(ctx, actor, filter)
}

// ListOverdue returns pending payments whose due date has passed.
func (s *Service) ListOverdue(ctx context.Context, actor Actor) ([]Payment, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	rows, err := s.db.Queries.ListOverduePayments(ctx, s.clock())
	if err != nil {
		return nil, fmt.Errorf("list overdue payments: %w", err)
	}
	return fromRows(rows)
}

type StatusTotal struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Stats struct {
	ByStatus      map[Status]StatusTotal `json:"byStatus"`
	TotalCount    int64                  `json:"totalCount"`
	TotalAmount   decimal.Decimal        `json:"totalAmount"`
	OverdueCount  int64                  `json:"overdueCount"`
	OverdueAmount decimal.Decimal        `json:"overdueAmount"`
}

func (s *Service) Stats(ctx context.Context, actor Actor) (Stats, error) {
	if !actor.IsAdmin() {
		return Stats{}, ErrPermissionDenied
	}
	rows, err := s.db.Queries.ListPaymentStatusAmounts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list payment amounts: %w", err)
	}

	stats := Stats{ByStatus: make(map[Status]StatusTotal), TotalAmount: decimal.Zero, OverdueAmount: decimal.Zero}
	for _, row := range rows {
		status := Status(row.Status)
		entry := stats.ByStatus[status]
		entry.Count++
		entry.Amount = entry.Amount.Add(row.Amount)
		stats.ByStatus[status] = entry
		stats.TotalCount++
		stats.TotalAmount = stats.TotalAmount.Add(row.Amount)
	}

	overdue, err := s.db.Queries.ListOverduePayments(ctx, s.clock())
	if err != nil {
		return Stats{}, fmt.Errorf("list overdue payments: %w", err)
	}
	for _, row := range overdue {
		stats.OverdueCount++
		stats.OverdueAmount = stats.OverdueAmount.Add(row.Amount)
	}
	return stats, nil
}

type UpdateInput struct {
	Amount          *decimal.Decimal
	PaymentMethod   *Method
	ReferenceNumber *string
	GCashNumber     *string
	Note            string
}

// UpdateDetails edits amount, method or reference. Members may edit only
// pending payments; admins may also edit completed and failed ones. Recorded
// and refunded payments are never edited. Amount changes are kept in
// metadata and notes.
func (s *Service) UpdateDetails(ctx context.Context, actor Actor, id int64, in UpdateInput) (Payment, error) {
	if in.Amount != nil && !in.Amount.IsPositive() {
		return Payment{}, invalid("amount", "must be greater than zero")
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return Payment{}, invalid("paymentMethod", "must be one of cash, bank_transfer, gcash, coins")
	}
	if in.ReferenceNumber != nil && strings.TrimSpace(*in.ReferenceNumber) == "" {
		return Payment{}, invalid("referenceNumber", "must not be blank")
	}

	now := s.clock()
	stamp := now.Format(time.RFC3339)
	var updated dbgen.Payment
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		row, err := loadPayment(ctx, q, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, row); err != nil {
			return err
		}

		current := Status(row.Status)
		switch current {
		case StatusRecord:
			return &StateConflictError{Action: ActionUpdate, Status: current, Reason: "unrecord the payment first"}
		case StatusRefunded:
			return &StateConflictError{Action: ActionUpdate, Status: current}
		}
		if !actor.IsAdmin() && current != StatusPending {
			return &StateConflictError{Action: ActionUpdate, Status: current, Reason: "only pending payments can be edited"}
		}

		meta, err := ParseMetadata(row.Metadata)
		if err != nil {
			return err
		}
		debited := Method(row.PaymentMethod) == MethodCoins && meta.CoinTransactionID != ""
		amount := row.Amount
		method := Method(row.PaymentMethod)
		reference := row.ReferenceNumber
		notes := row.Notes

		if in.Amount != nil && !in.Amount.Equal(row.Amount) {
			if debited {
				return invalid("amount", "coin payment has already been debited")
			}
			if meta.OriginalFee == nil {
				original := row.Amount
				meta.OriginalFee = &original
			}
			meta.IsAdminOverride = actor.IsAdmin()
			notes = AppendNote(notes, fmt.Sprintf("[%s] amount changed from %s to %s (%s)",
				stamp, row.Amount.StringFixed(2), in.Amount.StringFixed(2), actor.label()), s.cfg.NotesMaxLength)
			amount = *in.Amount
		}
		if in.PaymentMethod != nil && *in.PaymentMethod != method {
			if debited {
				return invalid("paymentMethod", "coin payment has already been debited")
			}
			if *in.PaymentMethod == MethodCoins && current != StatusPending {
				return invalid("paymentMethod", "coins can only be chosen while the payment is pending")
			}
			notes = AppendNote(notes, fmt.Sprintf("[%s] method changed from %s to %s (%s)",
				stamp, method, *in.PaymentMethod, actor.label()), s.cfg.NotesMaxLength)
			method = *in.PaymentMethod
		}
		if in.ReferenceNumber != nil {
			reference = strings.TrimSpace(*in.ReferenceNumber)
		}
		if in.GCashNumber != nil {
			normalized, err := NormalizeGCashNumber(*in.GCashNumber)
			if err != nil {
				return err
			}
			meta.GCashNumber = normalized
		}
		notes = AppendNote(notes, in.Note, s.cfg.NotesMaxLength)

		encoded, err := meta.Encode()
		if err != nil {
			return err
		}
		updated, err = q.UpdatePaymentDetails(ctx, dbgen.UpdatePaymentDetailsParams{
			Amount:          amount,
			PaymentMethod:   string(method),
			ReferenceNumber: reference,
			Notes:           notes,
			Metadata:        encoded,
			UpdatedAt:       now,
			ID:              row.ID,
			ExpectedStatus:  row.Status,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return &StateConflictError{Action: ActionUpdate, Status: current, Reason: "payment changed concurrently"}
		}
		if err != nil {
			if db.IsConstraintError(err) {
				return invalid("referenceNumber", "is already in use")
			}
			return fmt.Errorf("update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	payment, err := FromRow(updated)
	if err != nil {
		return Payment{}, err
	}
	notify.Send(ctx, s.deps.Notifier, notify.EventPaymentUpdated, payment)
	return payment, nil
}

// Approve settles a pending payment on an admin's word.
func (s *Service) Approve(ctx context.Context, actor Actor, id int64, note string) (Payment, error) {
	if !actor.IsAdmin() {
		return Payment{}, ErrPermissionDenied
	}
	return s.settle(ctx, actor, id, ActionApprove, note)
}

// Process settles a pending payment whose method settles immediately. Coin
// payments are debited here.
func (s *Service) Process(ctx context.Context, actor Actor, id int64) (Payment, error) {
	return s.settle(ctx, actor, id, ActionProcess, "")
}

func (s *Service) settle(ctx context.Context, actor Actor, id int64, action Action, note string) (Payment, error) {
	now := s.clock()
	logger := s.logger(ctx, actor).With().Int64("payment_id", id).Str("action", string(action)).Logger()

	var updated dbgen.Payment
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		row, err := loadPayment(ctx, q, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, row); err != nil {
			return err
		}
		if action == ActionProcess {
			if err := authorizeProcess(actor, row); err != nil {
				return err
			}
		}
		current := Status(row.Status)
		if _, err := NextStatus(current, action); err != nil {
			return err
		}

		meta, err := ParseMetadata(row.Metadata)
		if err != nil {
			return err
		}
		if Method(row.PaymentMethod) == MethodCoins && meta.CoinTransactionID == "" {
			if s.deps.Coins == nil {
				return invalid("paymentMethod", "coin payments are not available")
			}
			txID, err := s.deps.Coins.DebitWithin(ctx, txdb, row.UserID, row.Amount, row.ReferenceNumber)
			if errors.Is(err, coins.ErrInsufficientCoins) {
				return invalid("paymentMethod", "insufficient coin balance")
			}
			if err != nil {
				return fmt.Errorf("debit coins: %w", err)
			}
			meta.CoinTransactionID = txID
		}
		encoded, err := meta.Encode()
		if err != nil {
			return err
		}
		notes := AppendNote(row.Notes, transitionNote(now, actor, action, note), s.cfg.NotesMaxLength)

		if action == ActionApprove {
			updated, err = q.ApprovePayment(ctx, dbgen.ApprovePaymentParams{
				PaymentDate: nullTime(now),
				ApprovedBy:  nullInt(actor.UserID),
				ApprovedAt:  nullTime(now),
				Notes:       notes,
				Metadata:    encoded,
				UpdatedAt:   now,
				ID:          row.ID,
			})
		} else {
			updated, err = q.CompletePayment(ctx, dbgen.CompletePaymentParams{
				PaymentDate: nullTime(now),
				Notes:       notes,
				Metadata:    encoded,
				UpdatedAt:   now,
				ID:          row.ID,
			})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return &StateConflictError{Action: action, Status: current, Reason: "payment changed concurrently"}
		}
		if err != nil {
			return fmt.Errorf("%s payment: %w", action, err)
		}

		if row.ReservationID.Valid {
			return setReservationPaymentStatus(ctx, q, row.ReservationID.Int64, ReservationPaymentPaid, now)
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Payment settlement rejected")
		return Payment{}, err
	}

	payment, err := FromRow(updated)
	if err != nil {
		return Payment{}, err
	}
	logger.Info().Msg("Payment settled")

	event := notify.EventPaymentCompleted
	if action == ActionApprove {
		event = notify.EventPaymentApproved
	}
	notify.Send(ctx, s.deps.Notifier, event, payment)
	return payment, nil
}

// Record moves a completed payment into the financial books and adds its
// amount to the member's monthly usage.
func (s *Service) Record(ctx context.Context, actor Actor, id int64, note string) (Payment, error) {
	if !actor.IsAdmin() {
		return Payment{}, ErrPermissionDenied
	}
	now := s.clock()

	var updated dbgen.Payment
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		row, err := loadPayment(ctx, q, id)
		if err != nil {
			return err
		}
		current := Status(row.Status)
		if _, err := NextStatus(current, ActionRecord); err != nil {
			return err
		}
		updated, err = q.RecordPayment(ctx, dbgen.RecordPaymentParams{
			RecordedBy: nullInt(actor.UserID),
			RecordedAt: nullTime(now),
			Notes:      AppendNote(row.Notes, transitionNote(now, actor, ActionRecord, note), s.cfg.NotesMaxLength),
			UpdatedAt:  now,
			ID:         row.ID,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return &StateConflictError{Action: ActionRecord, Status: current, Reason: "payment changed concurrently"}
		}
		if err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	payment, err := FromRow(updated)
	if err != nil {
		return Payment{}, err
	}
	s.applyUsage(ctx, payment, true)
	s.recalculate(ctx)
	notify.Send(ctx, s.deps.Notifier, notify.EventPaymentRecorded, payment)
	return payment, nil
}

// Unrecord reverses Record.
func (s *Service) Unrecord(ctx context.Context, actor Actor, id int64, note string) (Payment, error) {
	if !actor.IsAdmin() {
		return Payment{}, ErrPermissionDenied
	}
	now := s.clock()

	var updated dbgen.Payment
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		row, err := loadPayment(ctx, q, id)
		if err != nil {
			return err
		}
		current := Status(row.Status)
		if _, err := NextStatus(current, ActionUnrecord); err != nil {
			return err
		}
		updated, err = q.UnrecordPayment(ctx, dbgen.UnrecordPaymentParams{
			Notes:     AppendNote(row.Notes, transitionNote(now, actor, ActionUnrecord, note), s.cfg.NotesMaxLength),
			UpdatedAt: now,
			ID:        row.ID,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return &StateConflictError{Action: ActionUnrecord, Status: current, Reason: "payment changed concurrently"}
		}
		if err != nil {
			return fmt.Errorf("unrecord payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	payment, err := FromRow(updated)
	if err != nil {
		return Payment{}, err
	}
	s.applyUsage(ctx, payment, false)
	s.recalculate(ctx)
	notify.Send(ctx, s.deps.Notifier, notify.EventPaymentUnrecorded, payment)
	return payment, nil
}

// Cancel refunds a completed payment or fails a pending one and puts the
// linked reservation back to awaiting payment.
func (s *Service) Cancel(ctx context.Context, actor Actor, id int64, reason string) (Payment, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "cancelled"
	}
	return s.terminate(ctx, actor, id, ActionCancel, reason)
}

// Fail marks a pending or completed payment failed. Maintenance jobs use it
// for payments whose reservation no longer needs paying.
func (s *Service) Fail(ctx context.Context, actor Actor, id int64, reason string) (Payment, error) {
	if !actor.IsAdmin() {
		return Payment{}, ErrPermissionDenied
	}
	if strings.TrimSpace(reason) == "" {
		reason = "failed"
	}
	return s.terminate(ctx, actor, id, ActionFail, reason)
}

func (s *Service) terminate(ctx context.Context, actor Actor, id int64, action Action, reason string) (Payment, error) {
	now := s.clock()

	var updated dbgen.Payment
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		row, err := loadPayment(ctx, q, id)
		if err != nil {
			return err
		}
		if err := authorize(actor, row); err != nil {
			return err
		}
		current := Status(row.Status)
		next, err := NextStatus(current, action)
		if err != nil {
			return err
		}

		meta, err := ParseMetadata(row.Metadata)
		if err != nil {
			return err
		}
		meta.Cancellation = &Cancellation{
			Reason:         reason,
			CancelledBy:    actor.label(),
			CancelledAt:    now,
			PreviousStatus: current,
		}
		if current == StatusCompleted && Method(row.PaymentMethod) == MethodCoins && meta.CoinTransactionID != "" && s.deps.Coins != nil {
			txID, err := s.deps.Coins.CreditWithin(ctx, txdb, row.UserID, row.Amount, row.ReferenceNumber)
			if err != nil {
				return fmt.Errorf("refund coins: %w", err)
			}
			meta.RefundTransactionID = txID
		}
		encoded, err := meta.Encode()
		if err != nil {
			return err
		}

		updated, err = q.SetPaymentStatus(ctx, dbgen.SetPaymentStatusParams{
			Status:         string(next),
			Notes:          AppendNote(row.Notes, transitionNote(now, actor, action, reason), s.cfg.NotesMaxLength),
			Metadata:       encoded,
			UpdatedAt:      now,
			ID:             row.ID,
			ExpectedStatus: row.Status,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return &StateConflictError{Action: action, Status: current, Reason: "payment changed concurrently"}
		}
		if err != nil {
			return fmt.Errorf("%s payment: %w", action, err)
		}

		if row.ReservationID.Valid && (action == ActionCancel || current == StatusCompleted) {
			return setReservationPaymentStatus(ctx, q, row.ReservationID.Int64, ReservationPaymentPending, now)
		}
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	payment, err := FromRow(updated)
	if err != nil {
		return Payment{}, err
	}
	logger := s.logger(ctx, actor)
	logger.Info().
		Int64("payment_id", payment.ID).
		Str("action", string(action)).
		Str("status", string(payment.Status)).
		Msg("Payment closed")

	event := notify.EventPaymentCancelled
	if action == ActionFail {
		event = notify.EventPaymentFailed
	}
	notify.Send(ctx, s.deps.Notifier, event, payment)
	return payment, nil
}

func (s *Service) applyUsage(ctx context.Context, p Payment, add bool) {
	if s.deps.Usage == nil {
		return
	}
	member := s.memberNameFor(ctx, p)
	date := p.Metadata.UsageDate(p.PaymentDate, s.clock())

	var err error
	if add {
		err = s.deps.Usage.AddAmount(ctx, member, date, p.Amount)
	} else {
		err = s.deps.Usage.SubtractAmount(ctx, member, date, p.Amount)
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Int64("payment_id", p.ID).
			Str("member_name", member).
			Bool("add", add).
			Msg("Failed to update court usage report")
	}
}

func (s *Service) memberNameFor(ctx context.Context, p Payment) string {
	if p.IsManual {
		if p.Metadata.MatchedMember != "" {
			return p.Metadata.MatchedMember
		}
		return p.Metadata.PlayerName
	}
	user, err := s.db.Queries.GetUserByID(ctx, p.UserID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("user_id", p.UserID).Msg("Failed to resolve payer for usage report")
		return ""
	}
	return user.FullName
}

func (s *Service) recalculate(ctx context.Context) {
	if s.deps.Finance == nil {
		return
	}
	if err := s.deps.Finance.Recalculate(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to recalculate financial report")
	}
}

func (s *Service) breakdownFor(ctx context.Context, q *dbgen.Queries, res dbgen.Reservation) *pricing.Breakdown {
	if s.deps.Calculator == nil {
		return nil
	}
	var players []string
	if err := json.Unmarshal([]byte(res.Players), &players); err != nil {
		return nil
	}
	_, names, err := rosterNames(ctx, q)
	if err != nil {
		return nil
	}
	quote, err := s.deps.Calculator.ComputeFee(int(res.TimeSlot), int(res.Duration), players, names)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Int64("reservation_id", res.ID).Msg("No fee breakdown for reservation")
		return nil
	}
	return &quote.Breakdown
}

// dueDate is midnight UTC of the usage day plus the configured grace days.
func (s *Service) dueDate(base time.Time) time.Time {
	day := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, s.cfg.DueDaysAfterUsage)
}

func transitionNote(now time.Time, actor Actor, action Action, note string) string {
	line := fmt.Sprintf("[%s] %s by %s", now.Format(time.RFC3339), action, actor.label())
	if note = strings.TrimSpace(note); note != "" {
		line += ": " + note
	}
	return line
}

func loadPayment(ctx context.Context, q *dbgen.Queries, id int64) (dbgen.Payment, error) {
	row, err := q.GetPaymentByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return dbgen.Payment{}, ErrPaymentNotFound
	}
	if err != nil {
		return dbgen.Payment{}, fmt.Errorf("load payment: %w", err)
	}
	return row, nil
}

// authorizeProcess limits payer-driven settlement to their own coin payments.
// Off-band methods and manual charges need an admin's approval.
func authorizeProcess(actor Actor, row dbgen.Payment) error {
	if actor.IsAdmin() {
		return nil
	}
	if Method(row.PaymentMethod) != MethodCoins || row.IsManual {
		return ErrPermissionDenied
	}
	return nil
}

func authorize(actor Actor, row dbgen.Payment) error {
	if actor.IsAdmin() || row.UserID == actor.UserID {
		return nil
	}
	return ErrPermissionDenied
}

func rosterNames(ctx context.Context, q *dbgen.Queries) ([]dbgen.ListActiveMembersRow, []string, error) {
	rows, err := q.ListActiveMembers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list members: %w", err)
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.FullName
	}
	return rows, names, nil
}

func setReservationPaymentStatus(ctx context.Context, q *dbgen.Queries, reservationID int64, status string, now time.Time) error {
	if err := q.UpdateReservationPaymentStatus(ctx, dbgen.UpdateReservationPaymentStatusParams{
		PaymentStatus: status,
		UpdatedAt:     now,
		ID:            reservationID,
	}); err != nil {
		return fmt.Errorf("update reservation payment status: %w", err)
	}
	return nil
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
