package permission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type DecisionStore interface {
	Permission(ctx context.Context) (domain.PermissionStatus, error)
	SetPermission(ctx context.Context, status domain.PermissionStatus) error
}

// Gate remembers the user's notification decision. The first request probes
// the alert sink; once a decision is stored it is only changed through Update.
type Gate struct {
	decisions DecisionStore
	sink      domain.AlertSink
}

func NewGate(decisions DecisionStore, sink domain.AlertSink) *Gate {
	return &Gate{
		decisions: decisions,
		sink:      sink,
	}
}

func (g *Gate) Status(ctx context.Context) (domain.PermissionStatus, error) {
	return g.decisions.Permission(ctx)
}

func (g *Gate) Request(ctx context.Context) (domain.PermissionStatus, error) {
	status, err := g.decisions.Permission(ctx)
	if err != nil {
		return domain.PermissionUndetermined, err
	}
	if status != domain.PermissionUndetermined {
		return status, nil
	}

	if err := g.sink.Probe(ctx); err != nil {
		// Not persisted so a later request can try again.
		slog.WarnContext(ctx, "alert sink unreachable, notification permission not granted",
			slog.String("error", err.Error()),
		)
		return domain.PermissionDenied, nil
	}

	if err := g.decisions.SetPermission(ctx, domain.PermissionGranted); err != nil {
		return domain.PermissionUndetermined, fmt.Errorf("failed to remember permission: %w", err)
	}

	slog.InfoContext(ctx, "notification permission granted")

	return domain.PermissionGranted, nil
}

// Update records a decision made outside the app, e.g. in system settings.
func (g *Gate) Update(ctx context.Context, status domain.PermissionStatus) error {
	if err := g.decisions.SetPermission(ctx, status); err != nil {
		return err
	}

	slog.InfoContext(ctx, "notification permission updated", slog.String("status", string(status)))

	return nil
}
