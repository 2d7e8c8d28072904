// internal/api/payments/handlers.go
package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	paymentsvc "github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/reconcile"
	"github.com/codr1/Courtside/internal/scheduler"
)

const (
	requestTimeout   = 10 * time.Second
	reconcileTimeout = 30 * time.Second
)

// Reconciler repairs multi-hour bookings for one payer.
type Reconciler interface {
	Reconcile(ctx context.Context, userID int64, lookback time.Duration) reconcile.Report
}

type OrphanCleaner interface {
	Cleanup(ctx context.Context) reconcile.CleanupReport
}

type Deps struct {
	Service    *paymentsvc.Service
	Reconciler Reconciler
	Cleaner    OrphanCleaner
	Lookback   time.Duration

	// JobStatus reports the scheduled maintenance jobs; nil lists none.
	JobStatus func() ([]scheduler.JobRun, error)
}

var deps Deps

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	if d.Service == nil {
		return
	}
	if d.Lookback <= 0 {
		d.Lookback = reconcile.DefaultLookback
	}
	deps = d
}

type createPaymentRequest struct {
	UserID          int64            `json:"userId" validate:"omitempty,gt=0"`
	ReservationID   *int64           `json:"reservationId" validate:"omitempty,gt=0"`
	PollID          string           `json:"pollId" validate:"omitempty,max=64"`
	IsManualPayment bool             `json:"isManualPayment"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentMethod   string           `json:"paymentMethod" validate:"required,oneof=cash bank_transfer gcash coins"`
	ReferenceNumber string           `json:"referenceNumber" validate:"omitempty,max=64"`
	Notes           string           `json:"notes" validate:"max=500"`
	GCashNumber     string           `json:"gcashNumber" validate:"omitempty,max=32"`
	Pending         bool             `json:"pending"`
	PlayerName      string           `json:"playerName" validate:"omitempty,max=100"`
	CourtUsageDate  string           `json:"courtUsageDate" validate:"omitempty,datetime=2006-01-02"`
}

type updatePaymentRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	PaymentMethod   *string          `json:"paymentMethod" validate:"omitempty,oneof=cash bank_transfer gcash coins"`
	ReferenceNumber *string          `json:"referenceNumber" validate:"omitempty,max=64"`
	GCashNumber     *string          `json:"gcashNumber" validate:"omitempty,max=32"`
	Note            string           `json:"note" validate:"max=500"`
}

type noteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type overdueResponse struct {
	Payments []paymentsvc.Payment `json:"payments"`
}

// POST /api/v1/payments
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}

	var req createPaymentRequest
	if err := apiutil.DecodeAndValidate(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payment, err := svc.Create(ctx, actor, paymentsvc.CreateInput{
		UserID:          req.UserID,
		ReservationID:   req.ReservationID,
		PollID:          strings.TrimSpace(req.PollID),
		IsManualPayment: req.IsManualPayment,
		Amount:          req.Amount,
		PaymentMethod:   paymentsvc.Method(req.PaymentMethod),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           req.Notes,
		GCashNumber:     req.GCashNumber,
		Pending:         req.Pending,
		PlayerName:      req.PlayerName,
		CourtUsageDate:  req.CourtUsageDate,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	writeResult(w, r, http.StatusCreated, payment)
	triggerReconcile(r, payment.UserID)
}

// GET /api/v1/payments
func HandleList(w http.ResponseWriter, r *http.Request) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}

	filter, err := listFilterFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if filter.UserID, err = apiutil.QueryInt64(r, "userId"); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	result, err := svc.List(r.Context(), actor, filter)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, result)
}

// GET /api/v1/payments/mine
func HandleListMine(w http.ResponseWriter, r *http.Request) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}

	filter, err := listFilterFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	result, err := svc.ListMine(r.Context(), actor, filter)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, result)
}

// GET /api/v1/payments/overdue
func HandleListOverdue(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}

	overdue, err := svc.ListOverdue(r.Context(), actor)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if overdue == nil {
		overdue = []paymentsvc.Payment{}
	}
	writeResult(w, r, http.StatusOK, overdueResponse{Payments: overdue})
}

// GET /api/v1/payments/stats
func HandleStats(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}

	stats, err := svc.Stats(r.Context(), actor)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, stats)
}

// GET /api/v1/payments/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	payment, err := svc.Get(r.Context(), actor, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, payment)
}

// PUT /api/v1/payments/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req updatePaymentRequest
	if err := apiutil.DecodeAndValidate(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	in := paymentsvc.UpdateInput{
		Amount:          req.Amount,
		ReferenceNumber: req.ReferenceNumber,
		GCashNumber:     req.GCashNumber,
		Note:            req.Note,
	}
	if req.PaymentMethod != nil {
		method := paymentsvc.Method(*req.PaymentMethod)
		in.PaymentMethod = &method
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payment, err := svc.UpdateDetails(ctx, actor, id, in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, payment)
}

// PUT /api/v1/payments/{id}/approve
func HandleApprove(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	handleNoteTransition(w, r, true, func(ctx context.Context, svc *paymentsvc.Service, actor paymentsvc.Actor, id int64, note string) (paymentsvc.Payment, error) {
		return svc.Approve(ctx, actor, id, note)
	})
}

// PUT /api/v1/payments/{id}/process
func HandleProcess(w http.ResponseWriter, r *http.Request) {
	handleNoteTransition(w, r, true, func(ctx context.Context, svc *paymentsvc.Service, actor paymentsvc.Actor, id int64, _ string) (paymentsvc.Payment, error) {
		return svc.Process(ctx, actor, id)
	})
}

// PUT /api/v1/payments/{id}/record
func HandleRecord(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	handleNoteTransition(w, r, false, func(ctx context.Context, svc *paymentsvc.Service, actor paymentsvc.Actor, id int64, note string) (paymentsvc.Payment, error) {
		return svc.Record(ctx, actor, id, note)
	})
}

// PUT /api/v1/payments/{id}/unrecord
func HandleUnrecord(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	handleNoteTransition(w, r, false, func(ctx context.Context, svc *paymentsvc.Service, actor paymentsvc.Actor, id int64, note string) (paymentsvc.Payment, error) {
		return svc.Unrecord(ctx, actor, id, note)
	})
}

// POST /api/v1/payments/{id}/cancel
func HandleCancel(w http.ResponseWriter, r *http.Request) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req cancelRequest
	if err := decodeOptional(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payment, err := svc.Cancel(ctx, actor, id, req.Reason)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, payment)
}

// POST /api/v1/payments/cleanup-orphans
func HandleCleanupOrphans(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	if deps.Cleaner == nil {
		apiutil.WriteError(w, r, errors.New("orphan cleaner not initialized"))
		return
	}

	report := deps.Cleaner.Cleanup(r.Context())
	log.Ctx(r.Context()).Info().
		Int("scanned", report.Scanned).
		Int("cleaned", report.Cleaned).
		Int("errors", len(report.Errors)).
		Msg("Orphan cleanup requested")
	writeResult(w, r, http.StatusOK, report)
}

// GET /api/v1/maintenance/jobs
func HandleMaintenanceJobs(w http.ResponseWriter, r *http.Request) {
	if !apiutil.RequireRole(w, r, authz.RoleAdmin) {
		return
	}
	jobs := []scheduler.JobRun{}
	if deps.JobStatus != nil {
		runs, err := deps.JobStatus()
		if err != nil && !errors.Is(err, scheduler.ErrNotInitialized) {
			apiutil.WriteError(w, r, err)
			return
		}
		if runs != nil {
			jobs = runs
		}
	}
	writeResult(w, r, http.StatusOK, map[string]any{"jobs": jobs})
}

type transitionFunc func(ctx context.Context, svc *paymentsvc.Service, actor paymentsvc.Actor, id int64, note string) (paymentsvc.Payment, error)

func handleNoteTransition(w http.ResponseWriter, r *http.Request, reconcileAfter bool, apply transitionFunc) {
	svc, actor, ok := begin(w, r)
	if !ok {
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req noteRequest
	if err := decodeOptional(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payment, err := apply(ctx, svc, actor, id, req.Note)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, payment)
	if reconcileAfter {
		triggerReconcile(r, payment.UserID)
	}
}

func begin(w http.ResponseWriter, r *http.Request) (*paymentsvc.Service, paymentsvc.Actor, bool) {
	if deps.Service == nil {
		log.Ctx(r.Context()).Error().Msg("Payment service not initialized")
		apiutil.WriteError(w, r, errors.New("payment service not initialized"))
		return nil, paymentsvc.Actor{}, false
	}
	actor, err := apiutil.ActorFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return nil, paymentsvc.Actor{}, false
	}
	return deps.Service, actor, true
}

// decodeOptional accepts an empty body for actions whose note is optional.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return apiutil.Validate(dst)
	}
	return apiutil.DecodeAndValidate(r, dst)
}

func listFilterFromQuery(r *http.Request) (paymentsvc.ListFilter, error) {
	page, err := apiutil.QueryInt(r, "page", 1)
	if err != nil {
		return paymentsvc.ListFilter{}, err
	}
	limit, err := apiutil.QueryInt(r, "limit", 0)
	if err != nil {
		return paymentsvc.ListFilter{}, err
	}
	return paymentsvc.ListFilter{
		Status: paymentsvc.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		Page:   page,
		Limit:  limit,
	}, nil
}

// triggerReconcile repairs the payer's multi-hour bookings in the
// background. The request context is detached so the work outlives the
// response.
func triggerReconcile(r *http.Request, userID int64) {
	rec := deps.Reconciler
	if rec == nil || userID == 0 {
		return
	}
	lookback := deps.Lookback
	base := context.WithoutCancel(r.Context())

	go func() {
		ctx, cancel := context.WithTimeout(base, reconcileTimeout)
		defer cancel()

		report := rec.Reconcile(ctx, userID, lookback)
		logger := log.Ctx(ctx)
		if len(report.Errors) > 0 {
			logger.Warn().
				Int64("user_id", userID).
				Strs("errors", report.Errors).
				Msg("Multi-hour reconciliation finished with errors")
			return
		}
		if report.Split > 0 {
			logger.Info().
				Int64("user_id", userID).
				Int("split", report.Split).
				Msg("Multi-hour reconciliation split payments")
		}
	}()
}

func writeResult(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write payment response")
	}
}
