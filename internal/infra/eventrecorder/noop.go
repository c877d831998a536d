package eventrecorder

import (
	"context"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.EventRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) Record(_ context.Context, _ []domain.LifecycleEvent) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
