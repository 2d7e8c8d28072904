package manualusage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/testutil"
)

func setup(t *testing.T) (superadmin, admin, member dbgen.User) {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc, err := payments.NewService(database, payments.DefaultConfig(), payments.Deps{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	InitHandlers(svc)

	superadmin = testutil.CreateUser(t, database, "Head Admin", "superadmin")
	admin = testutil.CreateUser(t, database, "Club Admin", "admin")
	member = testutil.CreateUser(t, database, "Maria Santos", "member")
	return superadmin, admin, member
}

func post(user *dbgen.User, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/manual-court-usage", strings.NewReader(body))
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{
			ID:       user.ID,
			FullName: user.FullName,
			Role:     user.Role,
		}))
	}
	rec := httptest.NewRecorder()
	HandleCreate(rec, req)
	return rec
}

const validBody = `{
	"date": "2025-03-09",
	"startTime": 6,
	"endTime": 8,
	"players": [
		{"name": "maria santos", "amount": "40"},
		{"name": "Walk-in Guest", "amount": 100}
	],
	"notes": "weekend league"
}`

func TestManualUsageCreatesPaymentPerPlayer(t *testing.T) {
	superadmin, _, member := setup(t)

	rec := post(&superadmin, validBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp manualUsageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Payments) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Payments[0].UserID != member.ID {
		t.Fatalf("matched player billed to %d, want %d", resp.Payments[0].UserID, member.ID)
	}
	if resp.Payments[1].UserID != superadmin.ID {
		t.Fatalf("guest billed to %d, want superadmin %d", resp.Payments[1].UserID, superadmin.ID)
	}
	for _, p := range resp.Payments {
		if p.Status != payments.StatusPending || p.PaymentMethod != payments.MethodCash {
			t.Fatalf("payment = %+v", p)
		}
		if !strings.Contains(p.Notes, "weekend league") {
			t.Fatalf("notes = %q", p.Notes)
		}
	}
}

func TestManualUsageRejections(t *testing.T) {
	superadmin, admin, member := setup(t)

	tests := []struct {
		name      string
		user      *dbgen.User
		body      string
		wantCode  int
		wantField string
	}{
		{"anonymous", nil, validBody, http.StatusUnauthorized, ""},
		{"member", &member, validBody, http.StatusForbidden, ""},
		{"admin", &admin, validBody, http.StatusForbidden, ""},
		{"missing date", &superadmin, `{"startTime":6,"endTime":7,"players":[{"name":"A","amount":1}]}`, http.StatusBadRequest, "date"},
		{"no players", &superadmin, `{"date":"2025-03-09","startTime":6,"endTime":7,"players":[]}`, http.StatusBadRequest, "players"},
		{"blank player", &superadmin, `{"date":"2025-03-09","startTime":6,"endTime":7,"players":[{"name":"","amount":1}]}`, http.StatusBadRequest, "players[0].name"},
		{"zero amount", &superadmin, `{"date":"2025-03-09","startTime":6,"endTime":7,"players":[{"name":"A","amount":0}]}`, http.StatusBadRequest, "players[0].amount"},
		{"end before start", &superadmin, `{"date":"2025-03-09","startTime":9,"endTime":8,"players":[{"name":"A","amount":1}]}`, http.StatusBadRequest, "endTime"},
		{"bad method", &superadmin, `{"date":"2025-03-09","startTime":6,"endTime":7,"paymentMethod":"iou","players":[{"name":"A","amount":1}]}`, http.StatusBadRequest, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(tt.user, tt.body)
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
