package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultCleanupSchedule = "0 0 * * *"

// Cleaner removes every reminder whose countdown has reached zero.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	cleaner  Cleaner
	spec     string
	location *time.Location
	timeout  time.Duration
}

func New(cleaner Cleaner, spec string, location *time.Location) *Scheduler {
	if spec == "" {
		spec = DefaultCleanupSchedule
	}
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		cleaner:  cleaner,
		spec:     spec,
		location: location,
		timeout:  30 * time.Second,
	}
}

// Start registers the cleanup job and starts the cron runner. It does not
// block; call Stop to wait for a running job to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.cleanup(ctx) }); err != nil {
		return fmt.Errorf("add cleanup job: %w", err)
	}

	s.cron.Start()
	slog.InfoContext(ctx, "scheduler started",
		slog.String("cleanup_schedule", s.spec),
		slog.String("timezone", s.location.String()),
	)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

// Next reports when the cleanup job fires next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) cleanup(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()

	removed, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "expired reminder cleanup failed",
			slog.String("error", err.Error()),
		)
		return
	}

	slog.InfoContext(ctx, "expired reminders cleaned up",
		slog.Int("removed", removed),
	)
}
