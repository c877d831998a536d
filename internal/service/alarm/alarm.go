package alarm

import (
	"context"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const (
	ChannelID         = "reminders-alarm"
	ChannelImportance = "high"
)

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func requireGranted(ctx context.Context, gate domain.PermissionGate) error {
	status, err := gate.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read notification permission: %w", err)
	}
	if !status.Granted() {
		return domain.ErrPermissionDenied
	}
	return nil
}
