package dates

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical date layout (YYYY-MM-DD)
const Layout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a canonical calendar date
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date without time of day.
// The zero value means the date is unknown.
type Date struct {
	year  int
	month int
	day   int
}

// NewDate returns the date for the given components, or false if they do
// not name a real calendar day.
func NewDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, false
	}

	return Date{year: year, month: month, day: day}, true
}

// FromTime truncates t to its calendar date in t's own location
func FromTime(t time.Time) Date {
	return Date{year: t.Year(), month: int(t.Month()), day: t.Day()}
}

// Parse parses a canonical YYYY-MM-DD string. An empty string yields the
// unset date.
func Parse(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}

	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return FromTime(t), nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d == Date{}
}

// Year returns the year component
func (d Date) Year() int { return d.year }

// Month returns the month component
func (d Date) Month() time.Month { return time.Month(d.month) }

// Day returns the day-of-month component
func (d Date) Day() int { return d.day }

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
}

// String returns the canonical form, or "" when unset
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// MonthKey returns the YYYY-MM bucket of the date, or "" when unset
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", d.year, d.month)
}

// MarshalJSON encodes an unset date as null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null, "" or a canonical date string
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Window is an inclusive range of accepted years
type Window struct {
	From int
	To   int
}

// Default validity windows
var (
	DefaultWindow     = Window{From: 2000, To: 2030}
	DefaultBodyWindow = Window{From: 2020, To: 2026}
)

// Contains reports whether d is set and its year falls inside the window
func (w Window) Contains(d Date) bool {
	return !d.IsZero() && d.year >= w.From && d.year <= w.To
}
