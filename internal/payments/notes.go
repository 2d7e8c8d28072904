package payments

import (
	"strconv"
	"strings"
)

const TruncatedMarker = "[TRUNCATED] "

// AppendNote adds entry on a new line and keeps the result within maxLen
// runes. Older content is dropped from the front and replaced by
// TruncatedMarker.
func AppendNote(existing, entry string, maxLen int) string {
	entry = strings.TrimSpace(entry)
	notes := existing
	if entry != "" {
		if notes != "" {
			notes += "\n"
		}
		notes += entry
	}
	if maxLen <= 0 {
		return notes
	}

	runes := []rune(notes)
	if len(runes) <= maxLen {
		return notes
	}

	keep := maxLen - len([]rune(TruncatedMarker))
	if keep <= 0 {
		return string(runes[len(runes)-maxLen:])
	}
	tail := runes[len(runes)-keep:]
	return TruncatedMarker + strings.TrimLeft(string(tail), "\n")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
