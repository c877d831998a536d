package alarm

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

// Immediate tracks alarms in process only. The reconciliation loop performs
// the visible alert when a reminder becomes due.
type Immediate struct {
	mu      sync.Mutex
	gate    domain.PermissionGate
	clock   clock.Clock
	pending map[int32]time.Time
}

func NewImmediate(gate domain.PermissionGate, clk clock.Clock) *Immediate {
	return &Immediate{
		gate:    gate,
		clock:   clk,
		pending: make(map[int32]time.Time),
	}
}

func (p *Immediate) Mode() domain.DeliveryMode {
	return domain.DeliveryImmediate
}

func (p *Immediate) Schedule(ctx context.Context, alarm domain.Alarm) error {
	if err := requireGranted(ctx, p.gate); err != nil {
		return err
	}

	fireAt := p.clock.Now().Add(clampDelay(alarm.Delay))

	p.mu.Lock()
	p.pending[alarm.ID] = fireAt
	p.mu.Unlock()

	slog.DebugContext(ctx, "immediate alarm armed",
		slog.Int("reminder_id", int(alarm.ID)),
		slog.Time("fire_at", fireAt),
	)

	return nil
}

func (p *Immediate) Cancel(_ context.Context, id int32) error {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
	return nil
}

func (p *Immediate) Backs(int32) bool {
	return false
}

func (p *Immediate) PendingIDs() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]int32, 0, len(p.pending))
	for id := range p.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
