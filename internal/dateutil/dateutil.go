// Package dateutil canonicalizes timestamps to calendar days. Every cache
// key and workout lookup in the rest of the codebase goes through Day, so
// two timestamps on the same calendar day are interchangeable.
package dateutil

import "time"

// Normalizer maps timestamps onto calendar days in a fixed time zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a Normalizer for the given location. A nil location
// means UTC.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Day returns the start-of-day instant for t. Idempotent: Day(Day(t)) == Day(t).
func (n *Normalizer) Day(t time.Time) time.Time {
	t = t.In(n.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, n.loc)
}

// MonthRange returns the half-open [start, end) window of the calendar month
// containing t.
func (n *Normalizer) MonthRange(t time.Time) (time.Time, time.Time) {
	t = t.In(n.loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, n.loc)
	return start, start.AddDate(0, 1, 0)
}

// YearRange returns the half-open [start, end) window of the given year.
func (n *Normalizer) YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, n.loc)
	return start, start.AddDate(1, 0, 0)
}

// Location returns the normalizer's time zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}
