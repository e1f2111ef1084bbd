// ABOUTME: Timestamp normalization to local calendar days
// ABOUTME: Strips time-of-day in the user's timezone without converting to UTC
package calendar

import "time"

// Normalizer collapses instants to calendar days in a fixed location.
type Normalizer struct {
	Location *time.Location
}

// NewNormalizer returns a Normalizer for loc, falling back to time.Local.
func NewNormalizer(loc *time.Location) Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return Normalizer{Location: loc}
}

func (n Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

// Normalize returns the calendar day t falls on in the normalizer's location.
func (n Normalizer) Normalize(t time.Time) Day {
	y, m, d := t.In(n.location()).Date()
	return Day{year: y, month: m, day: d}
}

// Midnight returns local midnight of the day containing t. Applying it twice
// yields the same instant.
func (n Normalizer) Midnight(t time.Time) time.Time {
	return n.Normalize(t).Midnight(n.location())
}

// Today is Normalize(now).
func (n Normalizer) Today(now time.Time) Day {
	return n.Normalize(now)
}
