package engine

import (
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type Options struct {
	MinDurationMinutes   int
	MaxDurationMinutes   int
	DefaultSnoozeMinutes int
	Location             *time.Location
	AlarmTitle           string
}

// Outcome is the result of an operation that (re)schedules one reminder.
// Degraded means the alarm could not be scheduled and the reminder relies on
// the in-process alert path.
type Outcome struct {
	Reminder domain.Reminder
	Degraded bool
}

type DeferResult struct {
	Target      time.Time
	GapSeconds  int64
	Reminders   []domain.Reminder
	DegradedIDs []int32
}

const (
	outcomeSuccess          = "success"
	outcomeDegraded         = "degraded"
	outcomeInvalidInput     = "invalid_input"
	outcomePermissionDenied = "permission_denied"
	outcomeNothingToDefer   = "nothing_to_defer"
	outcomeNotFound         = "not_found"
	outcomeError            = "error"
)
