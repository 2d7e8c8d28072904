package reservations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/pricing"
	"github.com/codr1/Courtside/internal/testutil"
)

type fixture struct {
	admin  dbgen.User
	member dbgen.User
	mux    *http.ServeMux
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	calc, err := pricing.NewCalculator(pricing.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	InitHandlers(database, calc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/reservations", HandleReservationCreate)
	mux.HandleFunc("PUT /api/v1/reservations/{id}/status", HandleReservationStatus)
	mux.HandleFunc("GET /api/v1/fees/quote", HandleFeeQuote)

	return fixture{
		admin:  testutil.CreateUser(t, database, "Club Admin", "admin"),
		member: testutil.CreateUser(t, database, "Maria Santos", "member"),
		mux:    mux,
	}
}

func (f fixture) do(method, path string, user *dbgen.User, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{
			ID:       user.ID,
			FullName: user.FullName,
			Role:     user.Role,
		}))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeReservation(t *testing.T, rec *httptest.ResponseRecorder) reservationResponse {
	t.Helper()
	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode reservation: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestCreateComputesFee(t *testing.T) {
	f := newFixture(t)

	// 18:00 and 19:00 are peak and charge the 100 floor; 20:00 is 20 + 50.
	rec := f.do(http.MethodPost, "/api/v1/reservations", &f.member,
		`{"date":"2025-03-10","timeSlot":18,"duration":3,"players":["maria  santos","Guest Player"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decodeReservation(t, rec)
	if !res.TotalFee.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("total fee = %s, want 270", res.TotalFee)
	}
	if res.EndTimeSlot != 21 || res.Status != "pending" || res.PaymentStatus != "pending" {
		t.Fatalf("reservation = %+v", res)
	}
	if res.FeeBreakdown == nil || res.FeeBreakdown.MemberCount != 1 || res.FeeBreakdown.NonMemberCount != 1 {
		t.Fatalf("breakdown = %+v", res.FeeBreakdown)
	}
	if len(res.Players) != 2 || res.Players[0] != "maria santos" {
		t.Fatalf("players = %v", res.Players)
	}
}

func TestCreateUsesExplicitFee(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/reservations", &f.member,
		`{"date":"2025-03-10","timeSlot":9,"players":["Maria Santos"],"totalFee":"35.50"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if fee := decodeReservation(t, rec).TotalFee; !fee.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("total fee = %s, want 35.50", fee)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	first := f.do(http.MethodPost, "/api/v1/reservations", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9,"duration":2}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, body %s", first.Code, first.Body.String())
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"same start", `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9}`, http.StatusConflict},
		{"inside range", `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":10}`, http.StatusConflict},
		{"straddles start", `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":8,"duration":2}`, http.StatusConflict},
		{"adjacent after", `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":11}`, http.StatusCreated},
		{"other day", `{"players":["Maria Santos"],"date":"2025-03-11","timeSlot":9}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/v1/reservations", &f.member, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	// A cancelled booking frees its slot.
	id := strconv.FormatInt(decodeReservation(t, first).ID, 10)
	if rec := f.do(http.MethodPut, "/api/v1/reservations/"+id+"/status", &f.admin, `{"status":"cancelled"}`); rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodPost, "/api/v1/reservations", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9}`); rec.Code != http.StatusCreated {
		t.Fatalf("rebook status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		user      *dbgen.User
		body      string
		wantCode  int
		wantField string
	}{
		{"anonymous", nil, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9}`, http.StatusUnauthorized, ""},
		{"missing date", &f.member, `{"players":["Maria Santos"],"timeSlot":9}`, http.StatusBadRequest, "date"},
		{"no players", &f.member, `{"date":"2025-03-10","timeSlot":9,"players":[]}`, http.StatusBadRequest, "players"},
		{"bad date", &f.member, `{"players":["Maria Santos"],"date":"10-03-2025","timeSlot":9}`, http.StatusBadRequest, "date"},
		{"before opening", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":3}`, http.StatusBadRequest, ""},
		{"past closing", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":23,"duration":2}`, http.StatusBadRequest, ""},
		{"negative fee", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9,"totalFee":-1}`, http.StatusBadRequest, "totalFee"},
		{"bad type", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9,"reservationType":"league"}`, http.StatusBadRequest, "reservationType"},
		{"member books for other", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9,"userId":` + strconv.FormatInt(f.admin.ID, 10) + `}`, http.StatusForbidden, ""},
		{"admin books for unknown", &f.admin, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9,"userId":999999}`, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/v1/reservations", tt.user, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantField == "" {
				return
			}
			var resp apiutil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", resp.Field, tt.wantField)
			}
		})
	}
}

func TestStatusChange(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/reservations", &f.member, `{"players":["Maria Santos"],"date":"2025-03-10","timeSlot":9}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	path := "/api/v1/reservations/" + strconv.FormatInt(decodeReservation(t, rec).ID, 10) + "/status"

	if rec := f.do(http.MethodPut, path, &f.member, `{"status":"completed"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("member status change = %d, want 403", rec.Code)
	}
	if rec := f.do(http.MethodPut, path, &f.admin, `{"status":"confirmed"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported status = %d, want 400", rec.Code)
	}
	rec = f.do(http.MethodPut, path, &f.admin, `{"status":"completed"}`)
	if rec.Code != http.StatusOK || decodeReservation(t, rec).Status != "completed" {
		t.Fatalf("complete = %d %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodPut, path, &f.admin, `{"status":"cancelled"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("cancel completed = %d, want 400", rec.Code)
	}
	if rec := f.do(http.MethodPut, "/api/v1/reservations/999999/status", &f.admin, `{"status":"cancelled"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("missing reservation = %d, want 404", rec.Code)
	}
}

func TestFeeQuote(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/fees/quote?timeSlot=5&players=Maria%20Santos", &f.member, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var quote pricing.Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if !quote.Amount.Equal(decimal.NewFromInt(100)) || !quote.IsPeakHour {
		t.Fatalf("quote = %+v, want peak floor 100", quote)
	}

	rec = f.do(http.MethodGet, "/api/v1/fees/quote?timeSlot=9&duration=2&players=Maria%20Santos,Walk%20In", &f.member, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if !quote.Amount.Equal(decimal.NewFromInt(140)) || quote.Breakdown.NonMemberCount != 1 {
		t.Fatalf("quote = %+v, want 140", quote)
	}

	if rec := f.do(http.MethodGet, "/api/v1/fees/quote", &f.member, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing slot = %d, want 400", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/v1/fees/quote?timeSlot=2", &f.member, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("closed slot = %d, want 400", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/v1/fees/quote?timeSlot=9", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d, want 401", rec.Code)
	}
}
