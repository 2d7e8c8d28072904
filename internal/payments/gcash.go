package payments

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const gcashRegion = "PH"

// NormalizeGCashNumber parses a Philippine mobile number in local or
// international form and returns it in E.164.
func NormalizeGCashNumber(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("gcashNumber", "is required")
	}

	num, err := phonenumbers.Parse(raw, gcashRegion)
	if err != nil {
		return "", invalid("gcashNumber", "is not a phone number")
	}
	if !phonenumbers.IsValidNumberForRegion(num, gcashRegion) {
		return "", invalid("gcashNumber", "must be a Philippine number")
	}
	if phonenumbers.GetNumberType(num) != phonenumbers.MOBILE {
		return "", invalid("gcashNumber", "must be a mobile number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
