package pricing

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codr1/Courtside/internal/matcher"
)

var (
	ErrInvalidSlot     = errors.New("time slot is outside operating hours")
	ErrInvalidDuration = errors.New("duration must be at least one hour")
	ErrPastClosing     = errors.New("booking ends after closing time")
	ErrNoPlayers       = errors.New("at least one player is required")
)

// Config is the pricing rule set. It is passed to the calculator explicitly
// so that each caller (and test) can vary it.
type Config struct {
	PeakHours     []int
	PeakHourFee   decimal.Decimal
	MemberRate    decimal.Decimal
	NonMemberRate decimal.Decimal
	OpeningHour   int
	ClosingHour   int
}

func DefaultConfig() Config {
	return Config{
		PeakHours:     []int{5, 18, 19, 21},
		PeakHourFee:   decimal.NewFromInt(100),
		MemberRate:    decimal.NewFromInt(20),
		NonMemberRate: decimal.NewFromInt(50),
		OpeningHour:   5,
		ClosingHour:   24,
	}
}

func (c Config) Validate() error {
	if c.OpeningHour < 0 || c.OpeningHour > 23 {
		return fmt.Errorf("opening hour %d must be between 0 and 23", c.OpeningHour)
	}
	if c.ClosingHour <= c.OpeningHour || c.ClosingHour > 24 {
		return fmt.Errorf("closing hour %d must be after opening hour and at most 24", c.ClosingHour)
	}
	for _, hour := range c.PeakHours {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("peak hour %d must be between 0 and 23", hour)
		}
	}
	if c.PeakHourFee.IsNegative() || c.MemberRate.IsNegative() || c.NonMemberRate.IsNegative() {
		return errors.New("fees must not be negative")
	}
	return nil
}

func (c Config) IsPeak(hour int) bool {
	return slices.Contains(c.PeakHours, hour)
}

// Classifier decides whether a free-text player name is a club member.
type Classifier interface {
	Classify(name string, members []string) matcher.Result
}

type PlayerBreakdown struct {
	Name        string  `json:"name"`
	IsMember    bool    `json:"isMember"`
	MatchedName string  `json:"matchedName,omitempty"`
	Confidence  float64 `json:"confidence"`
}

type HourBreakdown struct {
	Hour    int             `json:"hour"`
	IsPeak  bool            `json:"isPeak"`
	Amount  decimal.Decimal `json:"amount"`
	Formula string          `json:"formula"`
}

type Breakdown struct {
	MemberCount    int               `json:"memberCount"`
	NonMemberCount int               `json:"nonMemberCount"`
	Hours          []HourBreakdown   `json:"hours"`
	Players        []PlayerBreakdown `json:"players"`
	Formula        string            `json:"formula"`
}

type Quote struct {
	Amount     decimal.Decimal `json:"amount"`
	IsPeakHour bool            `json:"isPeakHour"`
	Breakdown  Breakdown       `json:"breakdown"`
}

type Calculator struct {
	cfg        Config
	classifier Classifier
}

func NewCalculator(cfg Config, classifier Classifier) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}
	if classifier == nil {
		classifier = matcher.New(matcher.DefaultConfig())
	}
	return &Calculator{cfg: cfg, classifier: classifier}, nil
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// ComputeFee prices every hour in [timeSlot, timeSlot+duration) on its own
// and sums the result. Peak hours charge max(peakHourFee, per-player total);
// off-peak hours charge the per-player total. Blank player names are ignored.
func (c *Calculator) ComputeFee(timeSlot, duration int, players, knownMembers []string) (Quote, error) {
	if timeSlot < c.cfg.OpeningHour || timeSlot >= c.cfg.ClosingHour {
		return Quote{}, ErrInvalidSlot
	}
	if duration < 1 {
		return Quote{}, ErrInvalidDuration
	}
	if timeSlot+duration > c.cfg.ClosingHour {
		return Quote{}, ErrPastClosing
	}

	breakdown := Breakdown{}
	for _, name := range players {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		result := c.classifier.Classify(name, knownMembers)
		breakdown.Players = append(breakdown.Players, PlayerBreakdown{
			Name:        name,
			IsMember:    result.Matched,
			MatchedName: result.MatchedName,
			Confidence:  result.Confidence,
		})
		if result.Matched {
			breakdown.MemberCount++
		} else {
			breakdown.NonMemberCount++
		}
	}
	if len(breakdown.Players) == 0 {
		return Quote{}, ErrNoPlayers
	}

	perPlayer := c.cfg.MemberRate.Mul(decimal.NewFromInt(int64(breakdown.MemberCount))).
		Add(c.cfg.NonMemberRate.Mul(decimal.NewFromInt(int64(breakdown.NonMemberCount))))
	perPlayerFormula := fmt.Sprintf("%d×%s + %d×%s",
		breakdown.MemberCount, c.cfg.MemberRate.StringFixed(2),
		breakdown.NonMemberCount, c.cfg.NonMemberRate.StringFixed(2))

	quote := Quote{Amount: decimal.Zero}
	parts := make([]string, 0, duration)
	for hour := timeSlot; hour < timeSlot+duration; hour++ {
		entry := HourBreakdown{Hour: hour, IsPeak: c.cfg.IsPeak(hour)}
		if entry.IsPeak {
			entry.Amount = decimal.Max(c.cfg.PeakHourFee, perPlayer)
			entry.Formula = fmt.Sprintf("max(%s, %s) = %s", c.cfg.PeakHourFee.StringFixed(2), perPlayerFormula, entry.Amount.StringFixed(2))
			quote.IsPeakHour = true
		} else {
			entry.Amount = perPlayer
			entry.Formula = fmt.Sprintf("%s = %s", perPlayerFormula, entry.Amount.StringFixed(2))
		}
		quote.Amount = quote.Amount.Add(entry.Amount)
		breakdown.Hours = append(breakdown.Hours, entry)
		parts = append(parts, fmt.Sprintf("%02d:00 %s", hour, entry.Amount.StringFixed(2)))
	}

	breakdown.Formula = fmt.Sprintf("%s = %s", strings.Join(parts, " + "), quote.Amount.StringFixed(2))
	quote.Breakdown = breakdown
	return quote, nil
}
