// ABOUTME: Calendar day value type used as the canonical cache and storage key
// ABOUTME: Collapses instants to local days and does DST-safe day arithmetic
package calendar

import (
	"fmt"
	"time"
)

// Layout is the canonical storage representation of a Day.
const Layout = "2006-01-02"

// Day is a date with the time of day stripped. Days are comparable and can be
// used directly as map keys.
type Day struct {
	year  int
	month time.Month
	day   int
}

// Date builds a Day, normalizing out-of-range values the way time.Date does
// (e.g. Jan 32 becomes Feb 1).
func Date(year int, month time.Month, day int) Day {
	// Noon UTC keeps the arithmetic clear of any DST transition.
	t := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (Day, error) {
	if len(s) != len(Layout) {
		return Day{}, fmt.Errorf("invalid calendar day %q: want YYYY-MM-DD", s)
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid calendar day %q: %w", s, err)
	}
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}, nil
}

// MustParse is Parse for literals in tests and constants.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) Year() int             { return d.year }
func (d Day) Month() time.Month     { return d.month }
func (d Day) DayOfMonth() int       { return d.day }
func (d Day) IsZero() bool          { return d == Day{} }
func (d Day) Weekday() time.Weekday { return d.noonUTC().Weekday() }

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler so Days serialize as YYYY-MM-DD
// in JSON and YAML.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddDays moves the day by n calendar days.
func (d Day) AddDays(n int) Day {
	return Date(d.year, d.month, d.day+n)
}

// Compare returns -1, 0 or +1.
func (d Day) Compare(o Day) int {
	switch {
	case d.year != o.year:
		return cmpInt(d.year, o.year)
	case d.month != o.month:
		return cmpInt(int(d.month), int(o.month))
	default:
		return cmpInt(d.day, o.day)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

// Midnight returns the first instant of the day in loc.
func (d Day) Midnight(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// IsNextDay reports whether b is exactly one calendar day after a.
func IsNextDay(a, b Day) bool {
	return a.AddDays(1) == b
}

func (d Day) noonUTC() time.Time {
	return time.Date(d.year, d.month, d.day, 12, 0, 0, 0, time.UTC)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
