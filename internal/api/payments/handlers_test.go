package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Courtside/internal/api"
	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	paymentsvc "github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/reconcile"
	"github.com/codr1/Courtside/internal/scheduler"
	"github.com/codr1/Courtside/internal/testutil"
)

type fakeReconciler struct {
	mu    sync.Mutex
	calls []int64
	done  chan struct{}
}

func (f *fakeReconciler) Reconcile(_ context.Context, userID int64, _ time.Duration) reconcile.Report {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
	f.done <- struct{}{}
	return reconcile.Report{UserID: userID}
}

type fakeCleaner struct {
	report reconcile.CleanupReport
}

func (f fakeCleaner) Cleanup(context.Context) reconcile.CleanupReport {
	return f.report
}

func fakeJobStatus() ([]scheduler.JobRun, error) {
	return []scheduler.JobRun{{Name: "orphan_payment_cleanup", Cron: "*/5 * * * *", Runs: 4}}, nil
}

type testServer struct {
	db         *db.DB
	handler    http.Handler
	reconciler *fakeReconciler
	admin      dbgen.User
	member     dbgen.User
	other      dbgen.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc, err := paymentsvc.NewService(database, paymentsvc.DefaultConfig(), paymentsvc.Deps{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	rec := &fakeReconciler{done: make(chan struct{}, 8)}
	InitHandlers(Deps{
		Service:    svc,
		Reconciler: rec,
		Cleaner:    fakeCleaner{report: reconcile.CleanupReport{Scanned: 3, Cleaned: 1, Skipped: 2}},
		JobStatus:  fakeJobStatus,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/payments", HandleCreate)
	mux.HandleFunc("GET /api/v1/payments", HandleList)
	mux.HandleFunc("GET /api/v1/payments/mine", HandleListMine)
	mux.HandleFunc("GET /api/v1/payments/overdue", HandleListOverdue)
	mux.HandleFunc("GET /api/v1/payments/stats", HandleStats)
	mux.HandleFunc("GET /api/v1/payments/{id}", HandleGet)
	mux.HandleFunc("PUT /api/v1/payments/{id}", HandleUpdate)
	mux.HandleFunc("PUT /api/v1/payments/{id}/approve", HandleApprove)
	mux.HandleFunc("PUT /api/v1/payments/{id}/process", HandleProcess)
	mux.HandleFunc("PUT /api/v1/payments/{id}/record", HandleRecord)
	mux.HandleFunc("PUT /api/v1/payments/{id}/unrecord", HandleUnrecord)
	mux.HandleFunc("POST /api/v1/payments/{id}/cancel", HandleCancel)
	mux.HandleFunc("POST /api/v1/payments/cleanup-orphans", HandleCleanupOrphans)
	mux.HandleFunc("GET /api/v1/maintenance/jobs", HandleMaintenanceJobs)

	return &testServer{
		db:         database,
		handler:    api.ChainMiddleware(mux, api.WithAuth(database.Queries), api.WithRequestID),
		reconciler: rec,
		admin:      testutil.CreateUser(t, database, "Club Admin", "admin"),
		member:     testutil.CreateUser(t, database, "A. Reyes", "member"),
		other:      testutil.CreateUser(t, database, "Maria Santos", "member"),
	}
}

func (s *testServer) do(t *testing.T, method, path string, user *dbgen.User, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set(api.UserIDHeader, strconv.FormatInt(user.ID, 10))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) waitReconcile(t *testing.T) {
	t.Helper()
	select {
	case <-s.reconciler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconcile was not triggered")
	}
}

func decodePayment(t *testing.T, rec *httptest.ResponseRecorder) paymentsvc.Payment {
	t.Helper()
	var payment paymentsvc.Payment
	if err := json.Unmarshal(rec.Body.Bytes(), &payment); err != nil {
		t.Fatalf("decode payment: %v (body %s)", err, rec.Body.String())
	}
	return payment
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiutil.ErrorResponse {
	t.Helper()
	var resp apiutil.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func createBody(reservationID int64, extra string) string {
	body := `{"reservationId":` + strconv.FormatInt(reservationID, 10) + `,"paymentMethod":"cash"`
	if extra != "" {
		body += "," + extra
	}
	return body + "}"
}

func TestCreateAndGetPayment(t *testing.T) {
	s := newTestServer(t)
	res := testutil.CreateReservation(t, s.db, s.member.ID, testutil.ReservationOptions{})

	rec := s.do(t, http.MethodPost, "/api/v1/payments", &s.member, createBody(res.ID, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodePayment(t, rec)
	if created.Status != paymentsvc.StatusCompleted {
		t.Fatalf("status = %s, want completed", created.Status)
	}
	if !strings.HasPrefix(created.ReferenceNumber, "TC-") {
		t.Fatalf("reference = %q", created.ReferenceNumber)
	}
	s.waitReconcile(t)

	path := "/api/v1/payments/" + strconv.FormatInt(created.ID, 10)
	if rec := s.do(t, http.MethodGet, path, &s.member, ""); rec.Code != http.StatusOK {
		t.Fatalf("owner get status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, path, &s.other, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("other member get status = %d, want 403", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, path, &s.admin, ""); rec.Code != http.StatusOK {
		t.Fatalf("admin get status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/v1/payments/999999", &s.admin, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing payment status = %d, want 404", rec.Code)
	}
}

func TestCreateRejections(t *testing.T) {
	s := newTestServer(t)
	res := testutil.CreateReservation(t, s.db, s.member.ID, testutil.ReservationOptions{})

	tests := []struct {
		name      string
		user      *dbgen.User
		body      string
		wantCode  int
		wantField string
	}{
		{"anonymous", nil, createBody(res.ID, ""), http.StatusUnauthorized, ""},
		{"bad method", &s.member, `{"reservationId":1,"paymentMethod":"paypal"}`, http.StatusBadRequest, "paymentMethod"},
		{"missing method", &s.member, `{"reservationId":1}`, http.StatusBadRequest, "paymentMethod"},
		{"bad usage date", &s.admin, `{"isManualPayment":true,"paymentMethod":"cash","courtUsageDate":"10/03/2025"}`, http.StatusBadRequest, "courtUsageDate"},
		{"unknown field", &s.member, `{"reservationId":1,"paymentMethod":"cash","tip":5}`, http.StatusBadRequest, ""},
		{"no target", &s.member, `{"paymentMethod":"cash"}`, http.StatusBadRequest, "reservationId"},
		{"member pays for other", &s.member, createBody(res.ID, `"userId":`+strconv.FormatInt(s.other.ID, 10)), http.StatusForbidden, ""},
		{"member manual payment", &s.member, `{"isManualPayment":true,"paymentMethod":"cash"}`, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/payments", tt.user, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantField != "" {
				if got := decodeError(t, rec).Field; got != tt.wantField {
					t.Fatalf("field = %q, want %q", got, tt.wantField)
				}
			}
		})
	}
}

func TestApproveAndRecordRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	res := testutil.CreateReservation(t, s.db, s.member.ID, testutil.ReservationOptions{})

	rec := s.do(t, http.MethodPost, "/api/v1/payments", &s.member, createBody(res.ID, `"pending":true`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	s.waitReconcile(t)
	pending := decodePayment(t, rec)
	if pending.Status != paymentsvc.StatusPending {
		t.Fatalf("status = %s, want pending", pending.Status)
	}
	base := "/api/v1/payments/" + strconv.FormatInt(pending.ID, 10)

	if rec := s.do(t, http.MethodPut, base+"/record", &s.admin, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("record pending status = %d, want 400", rec.Code)
	}
	if rec := s.do(t, http.MethodPut, base+"/approve", &s.member, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("member approve status = %d, want 403", rec.Code)
	}
	if rec := s.do(t, http.MethodPut, base+"/process", &s.member, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("member process cash status = %d, want 403", rec.Code)
	}

	rec = s.do(t, http.MethodPut, base+"/approve", &s.admin, `{"note":"cash received at desk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body.String())
	}
	approved := decodePayment(t, rec)
	if approved.Status != paymentsvc.StatusCompleted || approved.ApprovedBy == nil || *approved.ApprovedBy != s.admin.ID {
		t.Fatalf("approved payment = %+v", approved)
	}
	if !strings.Contains(approved.Notes, "cash received at desk") {
		t.Fatalf("notes = %q", approved.Notes)
	}
	s.waitReconcile(t)

	rec = s.do(t, http.MethodPut, base+"/record", &s.admin, "")
	if rec.Code != http.StatusOK || decodePayment(t, rec).Status != paymentsvc.StatusRecord {
		t.Fatalf("record status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPut, base+"/unrecord", &s.admin, `{"note":"wrong month"}`)
	if rec.Code != http.StatusOK || decodePayment(t, rec).Status != paymentsvc.StatusCompleted {
		t.Fatalf("unrecord status = %d, body %s", rec.Code, rec.Body.String())
	}

	s.reconciler.mu.Lock()
	calls := append([]int64(nil), s.reconciler.calls...)
	s.reconciler.mu.Unlock()
	if len(calls) != 2 || calls[0] != s.member.ID || calls[1] != s.member.ID {
		t.Fatalf("reconcile calls = %v, want payer twice", calls)
	}
}

func TestUpdateAndCancel(t *testing.T) {
	s := newTestServer(t)
	res := testutil.CreateReservation(t, s.db, s.member.ID, testutil.ReservationOptions{})

	rec := s.do(t, http.MethodPost, "/api/v1/payments", &s.member, createBody(res.ID, `"pending":true`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	s.waitReconcile(t)
	base := "/api/v1/payments/" + strconv.FormatInt(decodePayment(t, rec).ID, 10)

	rec = s.do(t, http.MethodPut, base, &s.member, `{"paymentMethod":"bank_transfer","referenceNumber":"BDO-5521"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodePayment(t, rec)
	if updated.PaymentMethod != paymentsvc.MethodBankTransfer || updated.ReferenceNumber != "BDO-5521" {
		t.Fatalf("updated payment = %+v", updated)
	}
	if rec := s.do(t, http.MethodPut, base, &s.member, `{"paymentMethod":"cheque"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad method update status = %d, want 400", rec.Code)
	}

	if rec := s.do(t, http.MethodPost, base+"/cancel", &s.other, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("other cancel status = %d, want 403", rec.Code)
	}
	rec = s.do(t, http.MethodPost, base+"/cancel", &s.member, `{"reason":"booked the wrong day"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body %s", rec.Code, rec.Body.String())
	}
	cancelled := decodePayment(t, rec)
	if cancelled.Status != paymentsvc.StatusFailed {
		t.Fatalf("status = %s, want failed", cancelled.Status)
	}
	if cancelled.Metadata.Cancellation == nil || cancelled.Metadata.Cancellation.Reason != "booked the wrong day" {
		t.Fatalf("cancellation = %+v", cancelled.Metadata.Cancellation)
	}
}

func TestListEndpoints(t *testing.T) {
	s := newTestServer(t)
	mine := testutil.CreateReservation(t, s.db, s.member.ID, testutil.ReservationOptions{})
	theirs := testutil.CreateReservation(t, s.db, s.other.ID, testutil.ReservationOptions{TimeSlot: 11})

	for _, c := range []struct {
		user dbgen.User
		res  int64
	}{{s.member, mine.ID}, {s.other, theirs.ID}} {
		if rec := s.do(t, http.MethodPost, "/api/v1/payments", &c.user, createBody(c.res, "")); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
		s.waitReconcile(t)
	}

	var result paymentsvc.ListResult
	rec := s.do(t, http.MethodGet, "/api/v1/payments", &s.member, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if result.Total != 1 || result.Payments[0].UserID != s.member.ID {
		t.Fatalf("member list = %+v", result)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/payments?status=completed&limit=1", &s.admin, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if result.Total != 2 || len(result.Payments) != 1 || result.Limit != 1 {
		t.Fatalf("admin list = %+v", result)
	}

	if rec := s.do(t, http.MethodGet, "/api/v1/payments?status=lost", &s.admin, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d, want 400", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/v1/payments?page=-1", &s.admin, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad page = %d, want 400", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/payments/mine", &s.admin, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode mine: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("admin mine total = %d, want 0", result.Total)
	}

	if rec := s.do(t, http.MethodGet, "/api/v1/payments/stats", &s.member, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("member stats = %d, want 403", rec.Code)
	}
	var stats paymentsvc.Stats
	rec = s.do(t, http.MethodGet, "/api/v1/payments/stats", &s.admin, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalCount != 2 || stats.ByStatus[paymentsvc.StatusCompleted].Count != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/payments/overdue", &s.admin, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"payments":[]`) {
		t.Fatalf("overdue = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCleanupOrphansEndpoint(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodPost, "/api/v1/payments/cleanup-orphans", &s.member, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("member cleanup = %d, want 403", rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/v1/payments/cleanup-orphans", &s.admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup = %d", rec.Code)
	}
	var report reconcile.CleanupReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Scanned != 3 || report.Cleaned != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestMaintenanceJobsEndpoint(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/api/v1/maintenance/jobs", &s.member, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("member jobs = %d, want 403", rec.Code)
	}
	rec := s.do(t, http.MethodGet, "/api/v1/maintenance/jobs", &s.admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("jobs = %d", rec.Code)
	}
	var body struct {
		Jobs []scheduler.JobRun `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(body.Jobs) != 1 || body.Jobs[0].Name != "orphan_payment_cleanup" || body.Jobs[0].Runs != 4 {
		t.Fatalf("jobs = %+v", body.Jobs)
	}
}
