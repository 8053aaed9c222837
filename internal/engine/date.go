package engine

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is an installment cadence.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// ParseFrequency accepts the cadence names case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown frequency %q", ErrInvalidPlanInput, s)
	}
	return f, nil
}

// Valid reports whether f is a known cadence.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// DateOf truncates t to its UTC calendar date. Timestamps read back in another location
// still land on the same day the storage layer's UTC range queries select.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Now is the current instant in UTC, the basis for every stored timestamp.
func Now() time.Time {
	return time.Now().UTC()
}

// AddDays shifts a calendar date by n days.
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// AddPeriod shifts a calendar date by one cadence step.
func AddPeriod(date time.Time, f Frequency) time.Time {
	return AddPeriods(date, f, 1)
}

// AddPeriods shifts a calendar date by n cadence steps. Monthly steps keep the start
// day-of-month and clamp to the last day of shorter months (Jan 31 -> Feb 29 -> Mar 31),
// so a long schedule never drifts.
func AddPeriods(date time.Time, f Frequency, n int) time.Time {
	date = DateOf(date)
	switch f {
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return date.AddDate(0, 0, 14*n)
	case FrequencyMonthly:
		return addMonthsClamped(date, n)
	}
	return date
}

func addMonthsClamped(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// InRange reports whether the calendar date of t lies in [start, end], inclusive.
func InRange(t, start, end time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(start)) && !d.After(DateOf(end))
}
