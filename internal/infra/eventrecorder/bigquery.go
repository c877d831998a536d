//go:build gcloud

package eventrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt time.Time `bigquery:"recorded_at"`
	OccurredAt time.Time `bigquery:"occurred_at"`
	Kind       string    `bigquery:"kind"`
	Mode       string    `bigquery:"mode"`
	ReminderID int64     `bigquery:"reminder_id"`
	TargetTime time.Time `bigquery:"target_time"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.EventRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "reminder event recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, reminder event recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, reminder event recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	inserter := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter()

	slog.InfoContext(ctx, "reminder event recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) Record(ctx context.Context, events []domain.LifecycleEvent) error {
	if len(events) == 0 {
		return nil
	}

	if err := r.inserter.Put(ctx, toRecords(events, time.Now())); err != nil {
		slog.WarnContext(ctx, "failed to insert reminder events to BigQuery",
			slog.String("error", err.Error()),
			slog.Int("event_count", len(events)),
		)
	}

	return nil
}

func toRecords(events []domain.LifecycleEvent, now time.Time) []*bigQueryRecord {
	out := make([]*bigQueryRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, &bigQueryRecord{
			RecordedAt: now,
			OccurredAt: ev.OccurredAt,
			Kind:       string(ev.Kind),
			Mode:       ev.Mode.String(),
			ReminderID: int64(ev.ReminderID),
			TargetTime: ev.TargetTime,
		})
	}
	return out
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
