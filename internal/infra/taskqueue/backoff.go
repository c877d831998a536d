package taskqueue

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const defaultMaxRetries = 3

func retryBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt-1))) * 100 * time.Millisecond
}

// waitBackoff sleeps before retry attempt (1-based) unless ctx ends first.
func waitBackoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(retryBackoff(attempt)):
		return nil
	}
}

// withRetry calls fn at most maxRetries times with exponential backoff between
// attempts. operation is a verb ("register", "delete") used in logs and the
// final error.
func withRetry[T any](ctx context.Context, operation, taskID string, maxRetries int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			slog.DebugContext(ctx, "retrying task queue call",
				slog.String("operation", operation),
				slog.String("task_id", taskID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", retryBackoff(attempt)),
			)
			if err := waitBackoff(ctx, attempt); err != nil {
				return zero, err
			}
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no attempts made")
	}

	slog.ErrorContext(ctx, "all retries exhausted for task queue call",
		slog.String("operation", operation),
		slog.String("task_id", taskID),
		slog.Int("max_retries", maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return zero, fmt.Errorf("failed to %s task after %d retries: %w", operation, maxRetries, lastErr)
}
