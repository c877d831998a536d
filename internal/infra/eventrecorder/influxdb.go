//go:build !gcloud

package eventrecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const measurement = "reminder_event"

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.EventRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "reminder event recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, reminder event recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "reminder event recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) Record(ctx context.Context, events []domain.LifecycleEvent) error {
	if len(events) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(events))
	for _, ev := range events {
		points = append(points, toPoint(ev))
	}

	if err := r.writeAPI.WritePoint(ctx, points...); err != nil {
		slog.WarnContext(ctx, "failed to write reminder events to InfluxDB",
			slog.String("error", err.Error()),
			slog.Int("event_count", len(events)),
		)
	}

	return nil
}

func toPoint(ev domain.LifecycleEvent) *write.Point {
	return influxdb2.NewPoint(
		measurement,
		map[string]string{
			"kind": string(ev.Kind),
			"mode": ev.Mode.String(),
		},
		map[string]any{
			"reminder_id":    int64(ev.ReminderID),
			"target_unix_ms": ev.TargetTime.UnixMilli(),
			"lead_seconds":   int64(ev.TargetTime.Sub(ev.OccurredAt).Seconds()),
		},
		ev.OccurredAt,
	)
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
