package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/observability/metrics"
	"github.com/KasumiMercury/primind-countdown/internal/observability/tracing"
	"github.com/KasumiMercury/primind-countdown/internal/service/store"
)

const DefaultInterval = time.Second

var ErrAlreadyRunning = errors.New("reconciliation loop already running")

const (
	alertPathLoop    = "loop"
	alertPathDurable = "durable"
)

type Config struct {
	Interval   time.Duration
	AlarmTitle string
}

type TickResult struct {
	Due        int
	Dispatched int
	HandedOff  int
}

// Loop re-derives every countdown from its target time once per interval
// and owns the visible alert for due reminders no durable alarm backs.
type Loop struct {
	reminders *store.ReminderStore
	port      domain.AlarmPort
	sink      domain.AlertSink
	recorder  domain.EventRecorder
	metrics   *metrics.ReminderMetrics
	clock     clock.Clock
	serial    sync.Locker
	cfg       Config

	running atomic.Bool
}

func NewLoop(
	reminders *store.ReminderStore,
	port domain.AlarmPort,
	sink domain.AlertSink,
	recorder domain.EventRecorder,
	reminderMetrics *metrics.ReminderMetrics,
	clk clock.Clock,
	serial sync.Locker,
	cfg Config,
) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Loop{
		reminders: reminders,
		port:      port,
		sink:      sink,
		recorder:  recorder,
		metrics:   reminderMetrics,
		clock:     clk,
		serial:    serial,
		cfg:       cfg,
	}
}

func (l *Loop) Running() bool {
	return l.running.Load()
}

// Run ticks immediately, then every interval until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	slog.InfoContext(ctx, "reconciliation loop started",
		slog.Duration("interval", l.cfg.Interval),
		slog.String("mode", l.port.Mode().String()),
	)

	l.Tick(ctx)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reconciliation loop stopped")
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

func (l *Loop) Tick(ctx context.Context) TickResult {
	start := time.Now()
	ctx, span := tracing.StartTickSpan(ctx)
	defer span.End()

	l.serial.Lock()
	defer l.serial.Unlock()

	l.reminders.Refresh()

	var res TickResult
	for _, r := range l.reminders.List() {
		if r.Remaining > 0 || r.Notified {
			continue
		}
		res.Due++

		path := alertPathDurable
		if l.port.Backs(r.ID) {
			res.HandedOff++
		} else {
			if err := l.dispatch(ctx, r); err != nil {
				slog.WarnContext(ctx, "alert dispatch failed, retrying next tick",
					slog.Int("reminder_id", int(r.ID)),
					slog.String("error", err.Error()),
				)
				continue
			}
			path = alertPathLoop
			res.Dispatched++
		}

		if err := l.markNotified(ctx, r.ID); err != nil {
			slog.ErrorContext(ctx, "failed to persist notified flag",
				slog.Int("reminder_id", int(r.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}

		l.metrics.RecordAlert(ctx, l.port.Mode().String(), path)
		l.record(ctx, r)
	}

	tracing.RecordResult(span, nil,
		attribute.Int("tick.due", res.Due),
		attribute.Int("tick.dispatched", res.Dispatched),
		attribute.Int("tick.handed_off", res.HandedOff),
	)
	l.metrics.RecordTickDuration(ctx, time.Since(start))

	return res
}

func (l *Loop) dispatch(ctx context.Context, r domain.Reminder) error {
	err := l.sink.Display(ctx, domain.Alert{
		ReminderID: r.ID,
		Title:      l.cfg.AlarmTitle,
		Body:       r.Text,
		Actions:    []string{domain.ActionSnooze, domain.ActionDismiss},
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "reminder alert dispatched",
		slog.Int("reminder_id", int(r.ID)),
		slog.Time("target_time", r.TargetTime),
	)
	return nil
}

func (l *Loop) markNotified(ctx context.Context, id int32) error {
	_, err := l.reminders.UpdateAll(ctx,
		func(r *domain.Reminder) bool { return r.ID == id && r.Remaining == 0 },
		func(r *domain.Reminder) { r.Notified = true },
	)
	return err
}

func (l *Loop) record(ctx context.Context, r domain.Reminder) {
	err := l.recorder.Record(ctx, []domain.LifecycleEvent{{
		Kind:       domain.EventAlerted,
		ReminderID: r.ID,
		Mode:       l.port.Mode(),
		TargetTime: r.TargetTime,
		OccurredAt: l.clock.Now(),
	}})
	if err != nil {
		slog.WarnContext(ctx, "failed to record alert event",
			slog.Int("reminder_id", int(r.ID)),
			slog.String("error", err.Error()),
		)
	}
}
