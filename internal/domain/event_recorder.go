package domain

import (
	"context"
	"time"
)

type EventKind string

const (
	EventCreated        EventKind = "created"
	EventSnoozed        EventKind = "snoozed"
	EventDeferred       EventKind = "deferred"
	EventDismissed      EventKind = "dismissed"
	EventAlerted        EventKind = "alerted"
	EventExpired        EventKind = "expired"
	EventScheduleFailed EventKind = "schedule_failed"
)

type LifecycleEvent struct {
	Kind       EventKind
	ReminderID int32
	Mode       DeliveryMode
	TargetTime time.Time
	OccurredAt time.Time
}

type EventRecorder interface {
	Record(ctx context.Context, events []LifecycleEvent) error
	Close() error
}
