package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/KasumiMercury/primind-countdown/internal/observability/logging"
)

type Config struct {
	ServiceInfo   logging.ServiceInfo
	Environment   logging.Environment
	GCPProjectID  string
	SamplingRate  float64
	DefaultModule logging.Module
	LogLevel      slog.Level
}

// Resources owns the process-wide logger and telemetry providers.
type Resources struct {
	logger    *slog.Logger
	shutdowns []func(context.Context) error
}

func (r *Resources) Logger() *slog.Logger {
	return r.logger
}

// Shutdown flushes and stops providers in reverse order of creation.
func (r *Resources) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(r.shutdowns) - 1; i >= 0; i-- {
		if err := r.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func Init(ctx context.Context, cfg Config) (*Resources, error) {
	logger := logging.NewLogger(logging.Config{
		Service:       cfg.ServiceInfo,
		Environment:   cfg.Environment,
		GCPProjectID:  cfg.GCPProjectID,
		DefaultModule: cfg.DefaultModule,
		Level:         cfg.LogLevel,
	})

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceInfo.Name),
			attribute.String("service.version", cfg.ServiceInfo.Version),
			attribute.String("deployment.environment", string(cfg.Environment)),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}

	exp, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rate := cfg.SamplingRate
	if rate <= 0 || rate > 1 {
		rate = 1.0
	}

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}
	if exp.span != nil {
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exp.span))
	}
	tp := sdktrace.NewTracerProvider(traceOpts...)

	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if exp.metric != nil {
		metricOpts = append(metricOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metric)))
	}
	mp := sdkmetric.NewMeterProvider(metricOpts...)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "observability initialized",
		slog.String("exporter", exp.name),
		slog.Float64("sampling_rate", rate),
	)

	return &Resources{
		logger:    logger,
		shutdowns: []func(context.Context) error{mp.Shutdown, tp.Shutdown},
	}, nil
}
