package usage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyAmounts maps "YYYY-MM" to the recorded amount for that month. A
// missing key means zero; keys are removed rather than stored as zero.
type MonthlyAmounts map[string]decimal.Decimal

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (m MonthlyAmounts) Get(key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}

func (m MonthlyAmounts) Add(key string, amount decimal.Decimal) {
	m[key] = m.Get(key).Add(amount)
	if !m[key].IsPositive() {
		delete(m, key)
	}
}

// Subtract lowers the bucket and drops it when the result is zero or below.
func (m MonthlyAmounts) Subtract(key string, amount decimal.Decimal) {
	next := m.Get(key).Sub(amount)
	if !next.IsPositive() {
		delete(m, key)
		return
	}
	m[key] = next
}

func (m MonthlyAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// Keys returns the month keys in calendar order.
func (m MonthlyAmounts) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ParseMonthlyAmounts(raw string) (MonthlyAmounts, error) {
	m := MonthlyAmounts{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode monthly amounts: %w", err)
	}
	return m, nil
}

func (m MonthlyAmounts) Encode() (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]decimal.Decimal(m))
	if err != nil {
		return "", fmt.Errorf("encode monthly amounts: %w", err)
	}
	return string(b), nil
}
