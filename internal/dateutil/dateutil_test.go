package dateutil

import (
	"testing"
	"time"
)

func TestDayIdempotent(t *testing.T) {
	n := NewNormalizer(time.UTC)
	ts := time.Date(2026, time.March, 14, 18, 42, 7, 123, time.UTC)
	day := n.Day(ts)
	if !n.Day(day).Equal(day) {
		t.Errorf("Day(Day(t)) = %v, want %v", n.Day(day), day)
	}
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
		t.Errorf("Day(t) not at midnight: %v", day)
	}
}

func TestDaySameDayInterchangeable(t *testing.T) {
	n := NewNormalizer(time.UTC)
	morning := time.Date(2026, time.March, 14, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2026, time.March, 14, 23, 59, 59, 0, time.UTC)
	if !n.Day(morning).Equal(n.Day(evening)) {
		t.Errorf("Day(morning) = %v, Day(evening) = %v", n.Day(morning), n.Day(evening))
	}
}

func TestDayRespectsLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	n := NewNormalizer(berlin)
	// 23:30 UTC on the 14th is already the 15th in Berlin (CET+1/CEST+2).
	ts := time.Date(2026, time.March, 14, 23, 30, 0, 0, time.UTC)
	day := n.Day(ts)
	if day.Day() != 15 {
		t.Errorf("day = %v, want the 15th in Berlin", day)
	}
}

func TestNewNormalizerNilLocation(t *testing.T) {
	n := NewNormalizer(nil)
	if n.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", n.Location())
	}
}

func TestMonthRange(t *testing.T) {
	n := NewNormalizer(time.UTC)
	start, end := n.MonthRange(time.Date(2026, time.February, 17, 12, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestYearRange(t *testing.T) {
	n := NewNormalizer(time.UTC)
	start, end := n.YearRange(2026)
	if !start.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}
