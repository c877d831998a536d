package domain

import "context"

//go:generate mockgen -source=alert_sink.go -destination=alert_sink_mock.go -package=domain

type Alert struct {
	ReminderID int32
	Title      string
	Body       string
	Actions    []string
}

// AlertSink performs a user-visible alert from inside the process.
type AlertSink interface {
	Display(ctx context.Context, alert Alert) error
	// Probe checks the sink can reach the user at all.
	Probe(ctx context.Context) error
}

// ActionHandler receives an action performed on a delivered alert.
type ActionHandler func(ctx context.Context, reminderID int32, actionID string) error
