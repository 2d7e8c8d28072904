package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

var userSeq atomic.Int64

// CreateUser inserts an active user. Role defaults to member.
func CreateUser(t *testing.T, database *db.DB, fullName, role string) dbgen.User {
	t.Helper()

	if role == "" {
		role = "member"
	}
	now := time.Now().UTC()
	seq := userSeq.Add(1)
	user, err := database.Queries.CreateUser(context.Background(), dbgen.CreateUserParams{
		Username:    fmt.Sprintf("user-%d", seq),
		FullName:    fullName,
		Email:       sql.NullString{String: fmt.Sprintf("user-%d@example.com", seq), Valid: true},
		Role:        role,
		CoinBalance: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create user %q: %v", fullName, err)
	}
	return user
}

// SetCoinBalance overwrites a user's coin balance.
func SetCoinBalance(t *testing.T, database *db.DB, userID int64, balance decimal.Decimal) {
	t.Helper()

	err := database.Queries.UpdateUserCoinBalance(context.Background(), dbgen.UpdateUserCoinBalanceParams{
		CoinBalance: balance,
		UpdatedAt:   time.Now().UTC(),
		ID:          userID,
	})
	if err != nil {
		t.Fatalf("set coin balance: %v", err)
	}
}

type ReservationOptions struct {
	Date          string
	TimeSlot      int
	Duration      int
	Players       []string
	Status        string
	PaymentStatus string
	TotalFee      decimal.Decimal
	CreatedAt     time.Time
}

// CreateReservation inserts a reservation, filling unset options with a
// one-hour pending booking at 09:00 on 2025-03-10.
func CreateReservation(t *testing.T, database *db.DB, userID int64, opts ReservationOptions) dbgen.Reservation {
	t.Helper()

	if opts.Date == "" {
		opts.Date = "2025-03-10"
	}
	if opts.TimeSlot == 0 {
		opts.TimeSlot = 9
	}
	if opts.Duration == 0 {
		opts.Duration = 1
	}
	if opts.Status == "" {
		opts.Status = "pending"
	}
	if opts.PaymentStatus == "" {
		opts.PaymentStatus = "pending"
	}
	if opts.TotalFee.IsZero() {
		opts.TotalFee = decimal.NewFromInt(100)
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}
	players, err := json.Marshal(opts.Players)
	if err != nil {
		t.Fatalf("encode players: %v", err)
	}
	if opts.Players == nil {
		players = []byte("[]")
	}

	reservation, err := database.Queries.CreateReservation(context.Background(), dbgen.CreateReservationParams{
		UserID:          userID,
		Date:            opts.Date,
		TimeSlot:        int64(opts.TimeSlot),
		Duration:        int64(opts.Duration),
		EndTimeSlot:     int64(opts.TimeSlot + opts.Duration),
		Players:         string(players),
		Status:          opts.Status,
		PaymentStatus:   opts.PaymentStatus,
		TotalFee:        opts.TotalFee,
		ReservationType: "regular",
		CreatedAt:       opts.CreatedAt,
		UpdatedAt:       opts.CreatedAt,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return reservation
}
