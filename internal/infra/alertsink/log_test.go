package alertsink

import (
	"context"
	"testing"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

func TestLogSink(t *testing.T) {
	sink := NewLogSink()
	if err := sink.Probe(context.Background()); err != nil {
		t.Errorf("probe failed: %v", err)
	}
	if err := sink.Display(context.Background(), domain.Alert{ReminderID: 1, Title: "Reminder", Body: "Buy milk"}); err != nil {
		t.Errorf("display failed: %v", err)
	}
}
