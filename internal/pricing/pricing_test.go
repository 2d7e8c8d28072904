package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/matcher"
)

var roster = []string{"John Dela Cruz", "A. Reyes", "Maria Santos"}

func newCalculator(t *testing.T, cfg Config) *Calculator {
	t.Helper()
	calc, err := NewCalculator(cfg, matcher.New(matcher.DefaultConfig()))
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func TestComputeFee(t *testing.T) {
	calc := newCalculator(t, DefaultConfig())

	tests := []struct {
		name         string
		slot         int
		duration     int
		players      []string
		wantAmount   int64
		wantPeak     bool
		wantMembers  int
		wantNonMembs int
	}{
		{name: "off-peak members only", slot: 9, duration: 1, players: []string{"John Dela Cruz", "A. Reyes"}, wantAmount: 40, wantMembers: 2},
		{name: "off-peak mixed", slot: 9, duration: 1, players: []string{"Jon Dela Cruz", "Guest Player"}, wantAmount: 70, wantMembers: 1, wantNonMembs: 1},
		{name: "peak floor applies", slot: 18, duration: 1, players: []string{"John Dela Cruz", "A. Reyes"}, wantAmount: 100, wantPeak: true, wantMembers: 2},
		{name: "peak per-player exceeds floor", slot: 19, duration: 1, players: []string{"Guest One", "Guest Two", "Guest Three"}, wantAmount: 150, wantPeak: true, wantNonMembs: 3},
		{name: "two peak hours", slot: 18, duration: 2, players: []string{"John Dela Cruz", "Maria Santos"}, wantAmount: 200, wantPeak: true, wantMembers: 2},
		{name: "spans off-peak into peak", slot: 17, duration: 2, players: []string{"Maria Santos"}, wantAmount: 120, wantPeak: true, wantMembers: 1},
		{name: "blank names ignored", slot: 10, duration: 1, players: []string{"  ", "Guest"}, wantAmount: 50, wantNonMembs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.ComputeFee(tt.slot, tt.duration, tt.players, roster)
			if err != nil {
				t.Fatalf("compute fee: %v", err)
			}
			if !quote.Amount.Equal(decimal.NewFromInt(tt.wantAmount)) {
				t.Fatalf("amount = %s, want %d", quote.Amount, tt.wantAmount)
			}
			if quote.IsPeakHour != tt.wantPeak {
				t.Fatalf("IsPeakHour = %v, want %v", quote.IsPeakHour, tt.wantPeak)
			}
			if quote.Breakdown.MemberCount != tt.wantMembers || quote.Breakdown.NonMemberCount != tt.wantNonMembs {
				t.Fatalf("counts = %d/%d, want %d/%d", quote.Breakdown.MemberCount, quote.Breakdown.NonMemberCount, tt.wantMembers, tt.wantNonMembs)
			}
			if len(quote.Breakdown.Hours) != tt.duration {
				t.Fatalf("hours in breakdown = %d, want %d", len(quote.Breakdown.Hours), tt.duration)
			}
			if quote.Breakdown.Formula == "" {
				t.Fatal("expected formula in breakdown")
			}
		})
	}
}

func TestComputeFeeErrors(t *testing.T) {
	calc := newCalculator(t, DefaultConfig())

	tests := []struct {
		name     string
		slot     int
		duration int
		players  []string
		want     error
	}{
		{name: "before opening", slot: 4, duration: 1, players: []string{"A"}, want: ErrInvalidSlot},
		{name: "at closing", slot: 24, duration: 1, players: []string{"A"}, want: ErrInvalidSlot},
		{name: "zero duration", slot: 10, duration: 0, players: []string{"A"}, want: ErrInvalidDuration},
		{name: "runs past closing", slot: 23, duration: 2, players: []string{"A"}, want: ErrPastClosing},
		{name: "no players", slot: 10, duration: 1, players: []string{" "}, want: ErrNoPlayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.ComputeFee(tt.slot, tt.duration, tt.players, roster)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPeakHourFeeFloor(t *testing.T) {
	calc := newCalculator(t, DefaultConfig())
	cfg := calc.Config()

	rosters := [][]string{
		{"John Dela Cruz"},
		{"John Dela Cruz", "A. Reyes"},
		{"Guest"},
		{"Guest", "Another Guest", "John Dela Cruz", "Maria Santos"},
	}
	for _, hour := range cfg.PeakHours {
		for _, players := range rosters {
			quote, err := calc.ComputeFee(hour, 1, players, roster)
			if err != nil {
				t.Fatalf("compute fee hour %d: %v", hour, err)
			}
			if quote.Amount.LessThan(cfg.PeakHourFee) {
				t.Fatalf("hour %d players %v: amount %s below peak fee %s", hour, players, quote.Amount, cfg.PeakHourFee)
			}
		}
	}
}

func TestMultiHourAdditivity(t *testing.T) {
	calc := newCalculator(t, DefaultConfig())
	players := []string{"Jon Dela Cruz", "Guest", "Maria Santos"}

	for start := 5; start < 22; start++ {
		for duration := 1; start+duration <= 24 && duration <= 4; duration++ {
			total, err := calc.ComputeFee(start, duration, players, roster)
			if err != nil {
				t.Fatalf("compute fee %d+%d: %v", start, duration, err)
			}
			sum := decimal.Zero
			for hour := start; hour < start+duration; hour++ {
				single, err := calc.ComputeFee(hour, 1, players, roster)
				if err != nil {
					t.Fatalf("compute fee %d: %v", hour, err)
				}
				sum = sum.Add(single.Amount)
			}
			if !total.Amount.Equal(sum) {
				t.Fatalf("start %d duration %d: total %s != sum of hours %s", start, duration, total.Amount, sum)
			}
		}
	}
}

func TestComputeFeeUsesInjectedConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PeakHours = []int{10}
	cfg.PeakHourFee = decimal.NewFromInt(250)
	calc := newCalculator(t, cfg)

	quote, err := calc.ComputeFee(10, 1, []string{"Guest"}, nil)
	if err != nil {
		t.Fatalf("compute fee: %v", err)
	}
	if !quote.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("amount = %s, want 250", quote.Amount)
	}

	quote, err = calc.ComputeFee(18, 1, []string{"Guest"}, nil)
	if err != nil {
		t.Fatalf("compute fee: %v", err)
	}
	if quote.IsPeakHour {
		t.Fatal("hour 18 should be off-peak under the custom config")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClosingHour = 4
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when closing precedes opening")
	}

	cfg = DefaultConfig()
	cfg.PeakHours = []int{25}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range peak hour")
	}
}
