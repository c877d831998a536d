package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/observability/metrics"
	"github.com/KasumiMercury/primind-countdown/internal/observability/tracing"
	"github.com/KasumiMercury/primind-countdown/internal/service/store"
)

// Engine owns every business rule of the reminder lifecycle. Operations are
// serialized through the shared lock, which the reconciliation loop also
// holds while it ticks.
type Engine struct {
	reminders *store.ReminderStore
	settings  *store.SettingsStore
	port      domain.AlarmPort
	gate      domain.PermissionGate
	recorder  domain.EventRecorder
	metrics   *metrics.ReminderMetrics
	clock     clock.Clock
	serial    sync.Locker
	opts      Options

	lastID int32
}

func NewEngine(
	reminders *store.ReminderStore,
	settings *store.SettingsStore,
	port domain.AlarmPort,
	gate domain.PermissionGate,
	recorder domain.EventRecorder,
	reminderMetrics *metrics.ReminderMetrics,
	clk clock.Clock,
	serial sync.Locker,
	opts Options,
) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Engine{
		reminders: reminders,
		settings:  settings,
		port:      port,
		gate:      gate,
		recorder:  recorder,
		metrics:   reminderMetrics,
		clock:     clk,
		serial:    serial,
		opts:      opts,
	}
}

func (e *Engine) Mode() domain.DeliveryMode {
	return e.port.Mode()
}

func (e *Engine) List() []domain.Reminder {
	return e.reminders.List()
}

func (e *Engine) Create(ctx context.Context, rawText string, durationMinutes int) (out Outcome, err error) {
	ctx, span := tracing.StartOperationSpan(ctx, "create",
		attribute.Int("reminder.duration_minutes", durationMinutes),
	)
	defer span.End()
	start := time.Now()
	defer func() { e.observe(ctx, span, "create", start, err, out.Degraded, false) }()

	e.serial.Lock()
	defer e.serial.Unlock()

	text, duration, err := e.parseInput(rawText, durationMinutes)
	if err != nil {
		return Outcome{}, err
	}

	status, err := e.gate.Request(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to request notification permission: %w", err)
	}
	if !status.Granted() {
		slog.InfoContext(ctx, "reminder rejected, notification permission not granted",
			slog.String("permission", string(status)),
		)
		return Outcome{}, domain.ErrPermissionDenied
	}

	now := e.clock.Now()
	r := domain.NewReminder(e.allocateID(now), text, now, duration)

	if err := e.reminders.Add(ctx, r); err != nil {
		return Outcome{}, fmt.Errorf("failed to store reminder: %w", err)
	}

	degraded := e.schedule(ctx, r, "create") != nil

	slog.InfoContext(ctx, "reminder created",
		slog.Int("reminder_id", int(r.ID)),
		slog.Time("target_time", r.TargetTime),
		slog.Int64("duration_seconds", r.OriginalDuration),
		slog.Bool("degraded", degraded),
	)
	e.recordEvent(ctx, domain.EventCreated, *r)

	span.SetAttributes(attribute.Int64("reminder.id", int64(r.ID)))

	return Outcome{Reminder: *r, Degraded: degraded}, nil
}

// HandleAction maps an action performed on a delivered alert onto the
// matching operation.
func (e *Engine) HandleAction(ctx context.Context, id int32, actionID string) error {
	switch actionID {
	case domain.ActionSnooze:
		_, err := e.Snooze(ctx, id, e.opts.DefaultSnoozeMinutes)
		return err
	case domain.ActionDismiss:
		return e.Dismiss(ctx, id)
	default:
		return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, actionID)
	}
}

// schedule arms the alarm for r. A failure is logged and recorded but never
// undoes the store mutation that preceded it.
func (e *Engine) schedule(ctx context.Context, r *domain.Reminder, operation string) error {
	ctx, span := tracing.StartAlarmSpan(ctx, "schedule", e.port.Mode().String(), r.ID)
	defer span.End()

	err := e.port.Schedule(ctx, domain.Alarm{
		ID:    r.ID,
		Title: e.opts.AlarmTitle,
		Body:  r.Text,
		Delay: r.TargetTime.Sub(e.clock.Now()),
	})
	tracing.RecordResult(span, err)
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "alarm scheduling failed, reminder falls back to in-process alert",
		slog.Int("reminder_id", int(r.ID)),
		slog.String("mode", e.port.Mode().String()),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	e.metrics.RecordScheduleFailure(ctx, e.port.Mode().String(), operation)
	e.recordEvent(ctx, domain.EventScheduleFailed, *r)

	return err
}

// cancel is idempotent. Failures are logged because the next schedule call
// retries the outstanding cancellation.
func (e *Engine) cancel(ctx context.Context, id int32) {
	ctx, span := tracing.StartAlarmSpan(ctx, "cancel", e.port.Mode().String(), id)
	defer span.End()

	err := e.port.Cancel(ctx, id)
	tracing.RecordResult(span, err)
	if err != nil {
		slog.WarnContext(ctx, "alarm cancellation failed",
			slog.Int("reminder_id", int(id)),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) recordEvent(ctx context.Context, kind domain.EventKind, reminders ...domain.Reminder) {
	if len(reminders) == 0 {
		return
	}

	now := e.clock.Now()
	events := make([]domain.LifecycleEvent, 0, len(reminders))
	for _, r := range reminders {
		events = append(events, domain.LifecycleEvent{
			Kind:       kind,
			ReminderID: r.ID,
			Mode:       e.port.Mode(),
			TargetTime: r.TargetTime,
			OccurredAt: now,
		})
	}

	if err := e.recorder.Record(ctx, events); err != nil {
		slog.WarnContext(ctx, "failed to record lifecycle events",
			slog.String("kind", string(kind)),
			slog.Int("count", len(events)),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) observe(ctx context.Context, span trace.Span, operation string, start time.Time, err error, degraded, notFound bool) {
	outcome := outcomeOf(err)
	switch {
	case outcome != outcomeSuccess:
	case notFound:
		outcome = outcomeNotFound
	case degraded:
		outcome = outcomeDegraded
	}

	tracing.RecordResult(span, err,
		attribute.String("reminder.outcome", outcome),
		attribute.Bool("alarm.degraded", degraded),
	)
	e.metrics.RecordOperation(ctx, operation, outcome, time.Since(start))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, domain.ErrInvalidInput):
		return outcomeInvalidInput
	case errors.Is(err, domain.ErrPermissionDenied):
		return outcomePermissionDenied
	case errors.Is(err, domain.ErrNothingToDefer):
		return outcomeNothingToDefer
	default:
		return outcomeError
	}
}
