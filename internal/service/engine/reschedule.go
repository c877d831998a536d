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

const maxSnoozeMinutes = 24 * 60

// Snooze moves the reminder to now+minutes and re-arms its alarm. An unknown
// id returns (nil, nil): the reminder was already dismissed.
func (e *Engine) Snooze(ctx context.Context, id int32, minutes int) (out *Outcome, err error) {
	ctx, span := tracing.StartOperationSpan(ctx, "snooze",
		attribute.Int64("reminder.id", int64(id)),
		attribute.Int("snooze.minutes", minutes),
	)
	defer span.End()
	start := time.Now()
	defer func() {
		e.observe(ctx, span, "snooze", start, err, out != nil && out.Degraded, out == nil && err == nil)
	}()

	if minutes <= 0 || minutes > maxSnoozeMinutes {
		return nil, fmt.Errorf("%w: snooze minutes %d", domain.ErrInvalidInput, minutes)
	}

	e.serial.Lock()
	defer e.serial.Unlock()

	if !e.reminders.Has(id) {
		slog.DebugContext(ctx, "snooze ignored, reminder no longer exists", slog.Int("reminder_id", int(id)))
		return nil, nil
	}

	e.cancel(ctx, id)

	now := e.clock.Now()
	target := now.Add(time.Duration(minutes) * time.Minute)

	updated, err := e.reminders.UpdateAll(ctx,
		func(r *domain.Reminder) bool { return r.ID == id },
		func(r *domain.Reminder) { r.Reschedule(target, int64(minutes)*60, now) },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store snoozed reminder: %w", err)
	}
	if len(updated) == 0 {
		return nil, nil
	}

	r, _ := e.reminders.Get(id)
	degraded := e.schedule(ctx, &r, "snooze") != nil

	slog.InfoContext(ctx, "reminder snoozed",
		slog.Int("reminder_id", int(id)),
		slog.Int("minutes", minutes),
		slog.Time("target_time", r.TargetTime),
		slog.Bool("degraded", degraded),
	)
	e.recordEvent(ctx, domain.EventSnoozed, r)

	return &Outcome{Reminder: r, Degraded: degraded}, nil
}

// DeferAll moves every reminder that is not yet due to the next local
// occurrence of hour:minute. Due and alerted reminders are never touched.
func (e *Engine) DeferAll(ctx context.Context, hour, minute int) (res DeferResult, err error) {
	ctx, span := tracing.StartOperationSpan(ctx, "defer_all",
		attribute.Int("defer.hour", hour),
		attribute.Int("defer.minute", minute),
	)
	defer span.End()
	start := time.Now()
	defer func() {
		e.observe(ctx, span, "defer_all", start, err, len(res.DegradedIDs) > 0, false)
	}()

	until := domain.ClockTime{Hour: hour, Minute: minute}
	if !until.Valid() {
		return DeferResult{}, fmt.Errorf("%w: defer time %d:%d", domain.ErrInvalidInput, hour, minute)
	}

	e.serial.Lock()
	defer e.serial.Unlock()

	selected := make(map[int32]struct{})
	for _, r := range e.reminders.List() {
		if r.Remaining > 0 {
			selected[r.ID] = struct{}{}
		}
	}
	if len(selected) == 0 {
		slog.InfoContext(ctx, "defer all requested with no active reminders")
		return DeferResult{}, domain.ErrNothingToDefer
	}

	now := e.clock.Now()
	target := until.NextOccurrence(now, e.opts.Location)
	gap := domain.RemainingSeconds(target, now)

	for id := range selected {
		e.cancel(ctx, id)
	}

	updated, err := e.reminders.UpdateAll(ctx,
		func(r *domain.Reminder) bool {
			_, ok := selected[r.ID]
			return ok && r.Remaining > 0
		},
		func(r *domain.Reminder) { r.Reschedule(target, gap, now) },
	)
	if err != nil {
		return DeferResult{}, fmt.Errorf("failed to store deferred reminders: %w", err)
	}
	deferred := make(map[int32]struct{}, len(updated))
	for _, id := range updated {
		deferred[id] = struct{}{}
	}

	res = DeferResult{Target: target, GapSeconds: gap}
	for _, r := range e.reminders.List() {
		if _, ok := selected[r.ID]; !ok {
			continue
		}
		if _, ok := deferred[r.ID]; !ok {
			// Came due while the alarms were being cancelled: it keeps its
			// target and gets its alarm back.
			slog.InfoContext(ctx, "reminder came due during defer all, restoring its alarm",
				slog.Int("reminder_id", int(r.ID)),
				slog.Time("target_time", r.TargetTime),
			)
			_ = e.schedule(ctx, &r, "defer_all_restore")
			continue
		}
		if e.schedule(ctx, &r, "defer_all") != nil {
			res.DegradedIDs = append(res.DegradedIDs, r.ID)
		}
		res.Reminders = append(res.Reminders, r)
	}

	if len(res.Reminders) == 0 {
		slog.InfoContext(ctx, "every selected reminder came due before it could be deferred")
		return DeferResult{}, domain.ErrNothingToDefer
	}

	slog.InfoContext(ctx, "reminders deferred",
		slog.Int("count", len(res.Reminders)),
		slog.Time("target_time", target),
		slog.Int64("gap_seconds", gap),
		slog.Int("degraded", len(res.DegradedIDs)),
	)
	e.recordEvent(ctx, domain.EventDeferred, res.Reminders...)

	return res, nil
}

// DeferAllToConfigured defers to the user's saved defer-to time.
func (e *Engine) DeferAllToConfigured(ctx context.Context) (DeferResult, error) {
	until, err := e.settings.DeferTo(ctx)
	if err != nil {
		return DeferResult{}, fmt.Errorf("failed to read defer-to setting: %w", err)
	}
	return e.DeferAll(ctx, until.Hour, until.Minute)
}
