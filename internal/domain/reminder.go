package domain

import (
	"math"
	"time"
)

// ReminderState is the lifecycle position of a Reminder, derived from
// its remaining time and notified flag.
type ReminderState string

const (
	StatePending ReminderState = "pending"
	StateDue     ReminderState = "due"
	StateAlerted ReminderState = "alerted"
)

func (s ReminderState) String() string {
	return string(s)
}

type Reminder struct {
	ID   int32
	Text string
	// TargetTime is authoritative; Remaining is always derived from it.
	TargetTime       time.Time
	Remaining        int64
	OriginalDuration int64
	Notified         bool
	CreatedAt        time.Time
}

func NewReminder(id int32, text string, now time.Time, duration time.Duration) *Reminder {
	r := &Reminder{
		ID:               id,
		Text:             text,
		TargetTime:       now.Add(duration),
		OriginalDuration: int64(duration / time.Second),
		CreatedAt:        now,
	}
	r.Recompute(now)
	return r
}

// RemainingAt returns max(0, ceil((TargetTime-now)/1s)).
func (r *Reminder) RemainingAt(now time.Time) int64 {
	return RemainingSeconds(r.TargetTime, now)
}

func (r *Reminder) Recompute(now time.Time) {
	r.Remaining = r.RemainingAt(now)
}

// Reschedule moves the reminder to a new target and re-arms its alert.
func (r *Reminder) Reschedule(target time.Time, originalDuration int64, now time.Time) {
	r.TargetTime = target
	r.OriginalDuration = originalDuration
	r.Notified = false
	r.Recompute(now)
}

func (r *Reminder) StateAt(now time.Time) ReminderState {
	switch {
	case r.Notified:
		return StateAlerted
	case r.RemainingAt(now) == 0:
		return StateDue
	default:
		return StatePending
	}
}

func RemainingSeconds(target, now time.Time) int64 {
	ms := target.Sub(now).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(ms) / 1000))
}
