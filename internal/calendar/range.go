// ABOUTME: Inclusive calendar day ranges used as reconciliation windows
// ABOUTME: Builds current-week and trailing-N-day windows
package calendar

import (
	"fmt"
	"time"
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start Day `json:"start" yaml:"start"`
	End   Day `json:"end" yaml:"end"`
}

// NewRange validates and builds a range.
func NewRange(start, end Day) (Range, error) {
	if end.Before(start) {
		return Range{}, fmt.Errorf("invalid range: end %s is before start %s", end, start)
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange reads two YYYY-MM-DD strings.
func ParseRange(start, end string) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(s, e)
}

// SingleDay is the range covering just d.
func SingleDay(d Day) Range {
	return Range{Start: d, End: d}
}

// Week returns the seven-day range containing d that starts on weekStart.
func Week(d Day, weekStart time.Weekday) Range {
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	start := d.AddDays(-offset)
	return Range{Start: start, End: start.AddDays(6)}
}

// Trailing returns the n days ending on (and including) d. n < 1 is treated as 1.
func Trailing(d Day, n int) Range {
	if n < 1 {
		n = 1
	}
	return Range{Start: d.AddDays(-(n - 1)), End: d}
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d Day) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Len is the number of days in the range.
func (r Range) Len() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		n++
	}
	return n
}

// Days lists every day in the range in ascending order.
func (r Range) Days() []Day {
	var days []Day
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Overlaps reports whether the two ranges share at least one day.
func (r Range) Overlaps(o Range) bool {
	return !r.End.Before(o.Start) && !o.End.Before(r.Start)
}

// Span returns the smallest range covering all of rs. ok is false when rs is empty.
func Span(rs ...Range) (span Range, ok bool) {
	for i, r := range rs {
		if i == 0 {
			span = r
			continue
		}
		if r.Start.Before(span.Start) {
			span.Start = r.Start
		}
		if r.End.After(span.End) {
			span.End = r.End
		}
	}
	return span, len(rs) > 0
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}
