package alertsink

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type logSink struct{}

// NewLogSink returns a sink that only writes the alert to the structured log.
// Used when no chat transport is configured.
func NewLogSink() domain.AlertSink {
	return logSink{}
}

func (logSink) Display(ctx context.Context, alert domain.Alert) error {
	slog.InfoContext(ctx, "reminder alert",
		slog.Int("reminder_id", int(alert.ReminderID)),
		slog.String("title", alert.Title),
		slog.String("body", alert.Body),
		slog.String("actions", strings.Join(alert.Actions, ",")),
	)
	return nil
}

func (logSink) Probe(context.Context) error {
	return nil
}
