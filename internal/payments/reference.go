package payments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewReferenceNumber returns TC-<epochMillis>-<6 base36 chars>.
func NewReferenceNumber(now time.Time) string {
	suffix := make([]byte, 6)
	limit := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to the clock.
			n = big.NewInt(now.UnixNano() % int64(len(referenceAlphabet)))
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TC-%d-%s", now.UnixMilli(), suffix)
}
