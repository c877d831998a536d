package alarm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/infra/taskqueue"
)

const registryKey = "alarms"

type registryEntry struct {
	TaskID string `json:"task_id"`
	FireAt int64  `json:"fire_at"`
	// Stale marks a task whose cancellation failed. It may still fire, but
	// it no longer owns the due-crossing.
	Stale bool `json:"stale,omitempty"`
}

// Durable hands alarms to an out-of-process task queue so they fire even
// when this process is suspended. At most one task per reminder is live:
// the previous task is deleted before a new one is registered.
type Durable struct {
	mu       sync.Mutex
	queue    taskqueue.TaskQueue
	gate     domain.PermissionGate
	blobs    domain.BlobStore
	clock    clock.Clock
	registry map[int32]registryEntry
}

func NewDurable(queue taskqueue.TaskQueue, gate domain.PermissionGate, blobs domain.BlobStore, clk clock.Clock) *Durable {
	return &Durable{
		queue:    queue,
		gate:     gate,
		blobs:    blobs,
		clock:    clk,
		registry: make(map[int32]registryEntry),
	}
}

// Load restores the id to task registry so alarms scheduled before a restart
// can still be cancelled.
func (p *Durable) Load(ctx context.Context) error {
	blob, err := p.blobs.Load(ctx, registryKey)
	if err != nil {
		return fmt.Errorf("failed to load alarm registry: %w", err)
	}

	registry := make(map[int32]registryEntry)
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &registry); err != nil {
			return fmt.Errorf("failed to decode alarm registry: %w", err)
		}
	}

	p.mu.Lock()
	p.registry = registry
	p.mu.Unlock()

	slog.InfoContext(ctx, "alarm registry loaded", slog.Int("count", len(registry)))

	return nil
}

func (p *Durable) Mode() domain.DeliveryMode {
	return domain.DeliveryDurable
}

func (p *Durable) Schedule(ctx context.Context, alarm domain.Alarm) error {
	if err := requireGranted(ctx, p.gate); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.cancelLocked(ctx, alarm.ID); err != nil {
		return fmt.Errorf("%w: previous alarm for %d still outstanding: %w", domain.ErrAlarmScheduling, alarm.ID, err)
	}

	fireAt := p.clock.Now().Add(clampDelay(alarm.Delay))
	taskID := fmt.Sprintf("reminder-%d-%d", alarm.ID, fireAt.UnixMilli())

	task := &taskqueue.NotificationTask{
		TaskID:        taskID,
		ScheduleAt:    fireAt,
		ReminderID:    alarm.ID,
		Title:         alarm.Title,
		Body:          alarm.Body,
		Channel:       ChannelID,
		Importance:    ChannelImportance,
		BypassSilence: true,
		Actions:       []string{domain.ActionSnooze, domain.ActionDismiss},
		AutoCancel:    false,
		WhileIdle:     true,
		FireAtMillis:  fireAt.UnixMilli(),
	}

	if _, err := p.queue.RegisterNotification(ctx, task); err != nil {
		slog.WarnContext(ctx, "durable alarm registration failed",
			slog.Int("reminder_id", int(alarm.ID)),
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", domain.ErrAlarmScheduling, err)
	}

	p.registry[alarm.ID] = registryEntry{TaskID: taskID, FireAt: fireAt.UnixMilli()}
	p.persistLocked(ctx)

	slog.InfoContext(ctx, "durable alarm scheduled",
		slog.Int("reminder_id", int(alarm.ID)),
		slog.String("task_id", taskID),
		slog.Time("fire_at", fireAt),
	)

	return nil
}

// Cancel is a no-op for ids without a registered task.
func (p *Durable) Cancel(ctx context.Context, id int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.cancelLocked(ctx, id); err != nil {
		return fmt.Errorf("%w: cancel alarm %d: %w", domain.ErrAlarmScheduling, id, err)
	}
	return nil
}

func (p *Durable) Backs(id int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.registry[id]
	return ok && !entry.Stale
}

func (p *Durable) PendingIDs() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]int32, 0, len(p.registry))
	for id, entry := range p.registry {
		if !entry.Stale {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (p *Durable) cancelLocked(ctx context.Context, id int32) error {
	entry, ok := p.registry[id]
	if !ok {
		return nil
	}

	if err := p.queue.DeleteTask(ctx, entry.TaskID); err != nil {
		if !entry.Stale {
			entry.Stale = true
			p.registry[id] = entry
			p.persistLocked(ctx)
		}
		slog.WarnContext(ctx, "failed to delete durable alarm",
			slog.Int("reminder_id", int(id)),
			slog.String("task_id", entry.TaskID),
			slog.String("error", err.Error()),
		)
		return err
	}

	delete(p.registry, id)
	p.persistLocked(ctx)

	slog.DebugContext(ctx, "durable alarm cancelled",
		slog.Int("reminder_id", int(id)),
		slog.String("task_id", entry.TaskID),
	)

	return nil
}

// persistLocked is best effort. The in-memory registry stays authoritative
// for this run.
func (p *Durable) persistLocked(ctx context.Context) {
	blob, err := json.Marshal(p.registry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode alarm registry", slog.String("error", err.Error()))
		return
	}
	if err := p.blobs.Save(ctx, registryKey, blob); err != nil {
		slog.WarnContext(ctx, "failed to persist alarm registry",
			slog.Int("count", len(p.registry)),
			slog.String("error", err.Error()),
		)
	}
}
