package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNumbers = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// datePattern is one row of the explicit pattern table
type datePattern struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (Date, bool)
}

// patternTable is tried in order; each pattern contributes its first match
// only, and an invalid result moves on to the next pattern.
var patternTable = []datePattern{
	{
		name:  "month-day-year",
		re:    regexp.MustCompile(`(\w+)\s+(\d{1,2}),?\s+(\d{4})`),
		build: func(m []string) (Date, bool) { return namedDate(m[3], m[1], m[2]) },
	},
	{
		name:  "day-month-year",
		re:    regexp.MustCompile(`(\d{1,2})\s+(\w+)\s+(\d{4})`),
		build: func(m []string) (Date, bool) { return namedDate(m[3], m[2], m[1]) },
	},
	{
		name:  "year-month-day",
		re:    regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`),
		build: func(m []string) (Date, bool) { return numericDate(m[1], m[2], m[3]) },
	},
	{
		name:  "numeric-day-month",
		re:    regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{4})`),
		build: disambiguateDayMonth,
	},
	{
		name:  "dotted",
		re:    regexp.MustCompile(`(\d{4})\.(\d{1,2})\.(\d{1,2})`),
		build: func(m []string) (Date, bool) { return numericDate(m[1], m[2], m[3]) },
	},
	{
		name:  "month-year",
		re:    regexp.MustCompile(`(\w+)\s+(\d{4})`),
		build: func(m []string) (Date, bool) { return namedDate(m[2], m[1], "1") },
	},
}

// table applies the explicit pattern table
func (n *Normalizer) table(raw string, _ time.Time) (Date, bool) {
	for _, p := range patternTable {
		m := p.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		if d, ok := p.build(m); ok && n.window.Contains(d) {
			return d, true
		}
	}

	return Date{}, false
}

func namedDate(year, monthName, day string) (Date, bool) {
	month, ok := monthNumbers[strings.ToLower(monthName)]
	if !ok {
		return Date{}, false
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return Date{}, false
	}

	return NewDate(y, month, d)
}

func numericDate(year, month, day string) (Date, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Date{}, false
	}
	mo, err := strconv.Atoi(month)
	if err != nil {
		return Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return Date{}, false
	}

	return NewDate(y, mo, d)
}

// disambiguateDayMonth reads N1/N2/YYYY. A first number above 12 can only be
// a day; a second number above 12 can only be a day; otherwise the order is
// ambiguous and day-first is assumed.
func disambiguateDayMonth(m []string) (Date, bool) {
	first, err := strconv.Atoi(m[1])
	if err != nil {
		return Date{}, false
	}
	second, err := strconv.Atoi(m[2])
	if err != nil {
		return Date{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return Date{}, false
	}

	if first <= 12 && second > 12 {
		return NewDate(year, first, second)
	}
	return NewDate(year, second, first)
}
