// ABOUTME: Tests for calendar day normalization, formatting and arithmetic
// ABOUTME: Covers idempotence, round-trips, DST-safe next-day checks and ranges
package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

func TestNormalize_Idempotent(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	n := NewNormalizer(loc)

	instants := []time.Time{
		time.Date(2024, 3, 10, 1, 59, 0, 0, loc),
		time.Date(2024, 3, 10, 3, 0, 0, 0, loc),
		time.Date(2024, 11, 3, 1, 30, 0, 0, loc),
		time.Date(2024, 6, 1, 23, 59, 59, 999, loc),
		time.Date(2024, 6, 2, 3, 30, 0, 0, time.UTC), // still June 1 in New York
	}

	for _, in := range instants {
		once := n.Midnight(in)
		twice := n.Midnight(once)
		if !once.Equal(twice) {
			t.Errorf("Midnight(Midnight(%v)) = %v, want %v", in, twice, once)
		}
		if n.Normalize(once) != n.Normalize(in) {
			t.Errorf("Normalize(Midnight(%v)) = %v, want %v", in, n.Normalize(once), n.Normalize(in))
		}
	}
}

func TestNormalize_UsesLocalTimezone(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	n := NewNormalizer(loc)

	// 03:30 UTC on June 2 is 23:30 on June 1 in New York.
	got := n.Normalize(time.Date(2024, 6, 2, 3, 30, 0, 0, time.UTC))
	if got != Date(2024, 6, 1) {
		t.Errorf("Normalize() = %v, want 2024-06-01", got)
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	for _, s := range []string{"2024-01-01", "2024-02-29", "1999-12-31", "2030-07-04"} {
		d, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", s, err)
		}
		if d.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, d.String())
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, s := range []string{"", "2024-1-01", "2024-02-30", "24-01-01", "2024-01-01T00:00:00Z", "tomorrow"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) expected error", s)
		}
	}
}

func TestIsNextDay(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"adjacent", "2024-05-01", "2024-05-02", true},
		{"month boundary", "2024-01-31", "2024-02-01", true},
		{"leap day", "2024-02-28", "2024-02-29", true},
		{"year boundary", "2023-12-31", "2024-01-01", true},
		{"same day", "2024-05-01", "2024-05-01", false},
		{"gap", "2024-05-01", "2024-05-03", false},
		{"reversed", "2024-05-02", "2024-05-01", false},
		{"spring forward", "2024-03-09", "2024-03-10", true},
		{"fall back", "2024-11-02", "2024-11-03", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNextDay(MustParse(tt.a), MustParse(tt.b)); got != tt.want {
				t.Errorf("IsNextDay(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsNextDay_AcrossDSTInstants(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	n := NewNormalizer(loc)

	// 2024-03-10 in New York is only 23 hours long.
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	sun := n.Normalize(start)
	mon := n.Normalize(start.Add(23 * time.Hour))
	if !IsNextDay(sun, mon) {
		t.Errorf("IsNextDay(%v, %v) = false, want true", sun, mon)
	}
}

func TestDate_Normalizes(t *testing.T) {
	if got := Date(2024, 1, 32); got != MustParse("2024-02-01") {
		t.Errorf("Date(2024, 1, 32) = %v, want 2024-02-01", got)
	}
}

func TestDay_JSON(t *testing.T) {
	d := MustParse("2024-04-15")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `"2024-04-15"` {
		t.Errorf("Marshal = %s, want \"2024-04-15\"", data)
	}

	var back Day
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if back != d {
		t.Errorf("Unmarshal = %v, want %v", back, d)
	}
}

func TestDay_Compare(t *testing.T) {
	d := MustParse("2024-05-03")
	tests := []struct {
		other Day
		want  int
	}{
		{MustParse("2024-05-03"), 0},
		{MustParse("2024-05-02"), 1},
		{MustParse("2024-05-04"), -1},
		{MustParse("2023-12-31"), 1},
		{MustParse("2024-06-01"), -1},
	}
	for _, tt := range tests {
		if got := d.Compare(tt.other); got != tt.want {
			t.Errorf("Compare(%v) = %d, want %d", tt.other, got, tt.want)
		}
	}

	same := MustParse("2024-05-03")
	if d.After(same) || d.Before(same) {
		t.Error("a day should be neither before nor after itself")
	}

	one := SingleDay(d)
	if !one.Contains(d) {
		t.Error("single-day range should contain its day")
	}
	if one.Len() != 1 || len(one.Days()) != 1 {
		t.Errorf("single-day Len() = %d, len(Days()) = %d, want 1", one.Len(), len(one.Days()))
	}
	if r := Trailing(d, 7); len(r.Days()) != 7 || r.Days()[6] != d {
		t.Errorf("Trailing(7).Days() = %v, want 7 days ending %v", r.Days(), d)
	}
}

func TestWeek(t *testing.T) {
	// 2024-05-15 is a Wednesday.
	wed := MustParse("2024-05-15")

	monWeek := Week(wed, time.Monday)
	if monWeek.Start != MustParse("2024-05-13") || monWeek.End != MustParse("2024-05-19") {
		t.Errorf("Week(monday) = %v, want 2024-05-13..2024-05-19", monWeek)
	}

	sunWeek := Week(wed, time.Sunday)
	if sunWeek.Start != MustParse("2024-05-12") || sunWeek.End != MustParse("2024-05-18") {
		t.Errorf("Week(sunday) = %v, want 2024-05-12..2024-05-18", sunWeek)
	}

	mon := MustParse("2024-05-13")
	if got := Week(mon, time.Monday).Start; got != mon {
		t.Errorf("Week(monday).Start for a Monday = %v, want %v", got, mon)
	}
}

func TestTrailing(t *testing.T) {
	r := Trailing(MustParse("2024-03-05"), 30)
	if r.Start != MustParse("2024-02-05") {
		t.Errorf("Start = %v, want 2024-02-05", r.Start)
	}
	if r.Len() != 30 {
		t.Errorf("Len() = %d, want 30", r.Len())
	}
	if one := Trailing(MustParse("2024-03-05"), 0); one.Len() != 1 {
		t.Errorf("Trailing(0).Len() = %d, want 1", one.Len())
	}
}

func TestRange_ContainsAndSpan(t *testing.T) {
	r, err := ParseRange("2024-05-01", "2024-05-07")
	if err != nil {
		t.Fatalf("ParseRange error = %v", err)
	}
	if !r.Contains(MustParse("2024-05-01")) || !r.Contains(MustParse("2024-05-07")) {
		t.Error("range should contain its endpoints")
	}
	if r.Contains(MustParse("2024-05-08")) {
		t.Error("range should not contain 2024-05-08")
	}
	if len(r.Days()) != 7 {
		t.Errorf("len(Days()) = %d, want 7", len(r.Days()))
	}

	other := Range{Start: MustParse("2024-04-20"), End: MustParse("2024-05-03")}
	if !r.Overlaps(other) {
		t.Error("ranges should overlap")
	}
	span, ok := Span(r, other)
	if !ok || span.Start != other.Start || span.End != r.End {
		t.Errorf("Span() = %v, %v", span, ok)
	}
	if _, ok := Span(); ok {
		t.Error("Span() of nothing should not be ok")
	}

	if _, err := ParseRange("2024-05-07", "2024-05-01"); err == nil {
		t.Error("ParseRange with end before start should fail")
	}
}
