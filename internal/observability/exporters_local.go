//go:build !gcloud

package observability

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type exporters struct {
	name   string
	span   sdktrace.SpanExporter
	metric sdkmetric.Exporter
}

// newExporters uses OTLP over HTTP when OTEL_EXPORTER_OTLP_ENDPOINT is set.
// Without it spans and metrics stay in process.
func newExporters(ctx context.Context, _ Config) (exporters, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return exporters{name: "none"}, nil
	}

	spanExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return exporters{}, fmt.Errorf("failed to create otlp trace exporter: %w", err)
	}

	metricExp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return exporters{}, fmt.Errorf("failed to create otlp metric exporter: %w", err)
	}

	return exporters{name: "otlp_http", span: spanExp, metric: metricExp}, nil
}
