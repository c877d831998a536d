package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	reminderMeterName = "reminder.engine"
)

type ReminderMetrics struct {
	operations        metric.Int64Counter
	operationDuration metric.Float64Histogram
	alertsDispatched  metric.Int64Counter
	scheduleFailures  metric.Int64Counter
	tickDuration      metric.Float64Histogram
	expiredRemoved    metric.Int64Counter
}

func NewReminderMetrics() (*ReminderMetrics, error) {
	meter := otel.Meter(reminderMeterName)

	operations, err := meter.Int64Counter(
		"reminder_operations_total",
		metric.WithDescription("Total number of reminder operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram(
		"reminder_operation_duration_seconds",
		metric.WithDescription("Reminder operation duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
		),
	)
	if err != nil {
		return nil, err
	}

	alertsDispatched, err := meter.Int64Counter(
		"reminder_alerts_total",
		metric.WithDescription("Due-crossings handed to an alert path"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, err
	}

	scheduleFailures, err := meter.Int64Counter(
		"reminder_schedule_failures_total",
		metric.WithDescription("Alarm scheduling failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	tickDuration, err := meter.Float64Histogram(
		"reminder_tick_duration_seconds",
		metric.WithDescription("Reconciliation tick duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25,
		),
	)
	if err != nil {
		return nil, err
	}

	expiredRemoved, err := meter.Int64Counter(
		"reminder_expired_removed_total",
		metric.WithDescription("Reminders removed by the nightly cleanup"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReminderMetrics{
		operations:        operations,
		operationDuration: operationDuration,
		alertsDispatched:  alertsDispatched,
		scheduleFailures:  scheduleFailures,
		tickDuration:      tickDuration,
		expiredRemoved:    expiredRemoved,
	}, nil
}

func (m *ReminderMetrics) RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.operations.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAlert counts a due-crossing by who delivers it: the loop or the
// durable alarm.
func (m *ReminderMetrics) RecordAlert(ctx context.Context, mode, path string) {
	m.alertsDispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("path", path),
	))
}

func (m *ReminderMetrics) RecordScheduleFailure(ctx context.Context, mode, operation string) {
	m.scheduleFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("operation", operation),
	))
}

func (m *ReminderMetrics) RecordTickDuration(ctx context.Context, duration time.Duration) {
	m.tickDuration.Record(ctx, duration.Seconds())
}

func (m *ReminderMetrics) RecordExpiredRemoved(ctx context.Context, count int) {
	m.expiredRemoved.Add(ctx, int64(count))
}
