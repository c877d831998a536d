package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const reminderTracerName = "github.com/KasumiMercury/primind-countdown/internal/service/engine"

func ReminderTracer() trace.Tracer {
	return otel.Tracer(reminderTracerName)
}

func StartOperationSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder."+operation,
		trace.WithAttributes(attrs...),
	)
}

func StartTickSpan(ctx context.Context) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.reconcile_tick")
}

func StartAlarmSpan(ctx context.Context, operation, mode string, reminderID int32) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.alarm."+operation,
		trace.WithAttributes(
			attribute.String("alarm.mode", mode),
			attribute.Int64("reminder.id", int64(reminderID)),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordResult(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
