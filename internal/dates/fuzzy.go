package dates

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// leadingNumericDate matches input that starts with N/N/YYYY, with or
// without a time after it. Those are left to the pattern table so the
// day-first rule applies.
var leadingNumericDate = regexp.MustCompile(`^\s*\d{1,2}[-/.]\d{1,2}[-/.]\d{4}`)

// DateParser is a FuzzyParser backed by github.com/araddon/dateparse
type DateParser struct{}

// ParseFuzzy parses raw in any layout dateparse recognizes
func (DateParser) ParseFuzzy(raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || leadingNumericDate.MatchString(raw) {
		return time.Time{}, false
	}

	// dateparse can panic on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}
