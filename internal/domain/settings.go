package domain

import (
	"fmt"
	"time"
)

type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: clock time %q must be HH:MM", ErrInvalidInput, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// NextOccurrence returns the first instant strictly after now whose local
// wall clock in loc reads c.
func (c ClockTime) NextOccurrence(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
	if !candidate.After(now) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+1, c.Hour, c.Minute, 0, 0, loc)
	}
	return candidate
}

type Settings struct {
	DeferTo ClockTime
}
