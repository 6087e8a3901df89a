package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxRelativeDays caps "N units ago" so huge counts cannot overflow AddDate
const maxRelativeDays = 1 << 20

var relativePatterns = []struct {
	re   *regexp.Regexp
	days int
}{
	{regexp.MustCompile(`(\d+)\s+days?\s+ago`), 1},
	{regexp.MustCompile(`(\d+)\s+weeks?\s+ago`), 7},
	{regexp.MustCompile(`(\d+)\s+months?\s+ago`), 30},
	{regexp.MustCompile(`(\d+)\s+years?\s+ago`), 365},
}

// relative resolves "N days/weeks/months/years ago", "yesterday" and "today"
// against now. Months are 30 days and years 365 days.
func (n *Normalizer) relative(raw string, now time.Time) (Date, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))

	for _, p := range relativePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		count, err := strconv.Atoi(m[1])
		if err != nil || count > maxRelativeDays/p.days {
			continue
		}

		return FromTime(now.AddDate(0, 0, -count*p.days)), true
	}

	if strings.Contains(text, "yesterday") {
		return FromTime(now.AddDate(0, 0, -1)), true
	}
	if strings.Contains(text, "today") {
		return FromTime(now), true
	}

	return Date{}, false
}
