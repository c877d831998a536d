package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/observability/tracing"
)

// Dismiss cancels the alarm and removes the reminder. Unknown ids are a no-op.
func (e *Engine) Dismiss(ctx context.Context, id int32) (err error) {
	ctx, span := tracing.StartOperationSpan(ctx, "dismiss",
		attribute.Int64("reminder.id", int64(id)),
	)
	defer span.End()
	start := time.Now()
	removed := false
	defer func() { e.observe(ctx, span, "dismiss", start, err, false, err == nil && !removed) }()

	e.serial.Lock()
	defer e.serial.Unlock()

	e.cancel(ctx, id)

	r, found := e.reminders.Get(id)
	if !found {
		return nil
	}

	removed, err = e.reminders.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove reminder: %w", err)
	}

	slog.InfoContext(ctx, "reminder dismissed", slog.Int("reminder_id", int(id)))
	e.recordEvent(ctx, domain.EventDismissed, r)

	return nil
}

// CleanupExpired removes every reminder whose countdown reached zero and
// returns how many were removed. Notified is not consulted.
func (e *Engine) CleanupExpired(ctx context.Context) (removedCount int, err error) {
	ctx, span := tracing.StartOperationSpan(ctx, "cleanup_expired")
	defer span.End()
	start := time.Now()
	defer func() { e.observe(ctx, span, "cleanup_expired", start, err, false, false) }()

	e.serial.Lock()
	defer e.serial.Unlock()

	removed, err := e.reminders.RemoveWhere(ctx, func(r *domain.Reminder) bool {
		return r.Remaining == 0
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired reminders: %w", err)
	}

	for _, r := range removed {
		e.cancel(ctx, r.ID)
	}

	if len(removed) > 0 {
		e.metrics.RecordExpiredRemoved(ctx, len(removed))
		e.recordEvent(ctx, domain.EventExpired, removed...)
	}

	slog.InfoContext(ctx, "expired reminders cleaned up",
		slog.Int("removed", len(removed)),
		slog.Int("remaining", e.reminders.Len()),
	)

	return len(removed), nil
}
