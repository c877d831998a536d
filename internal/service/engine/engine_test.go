package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/infra/blobstore"
	"github.com/KasumiMercury/primind-countdown/internal/infra/taskqueue"
	"github.com/KasumiMercury/primind-countdown/internal/observability/metrics"
	"github.com/KasumiMercury/primind-countdown/internal/service/alarm"
	"github.com/KasumiMercury/primind-countdown/internal/service/reconcile"
	"github.com/KasumiMercury/primind-countdown/internal/service/store"
	"github.com/KasumiMercury/primind-countdown/internal/testutil"
)

var (
	jst      = testutil.JST
	baseTime = testutil.Morning
)

type eventLog struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (l *eventLog) Record(_ context.Context, events []domain.LifecycleEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

func (l *eventLog) Close() error { return nil }

func (l *eventLog) idsOf(kind domain.EventKind) []int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []int32
	for _, ev := range l.events {
		if ev.Kind == kind {
			out = append(out, ev.ReminderID)
		}
	}
	return out
}

func (l *eventLog) kinds() []domain.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.EventKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	engine    *Engine
	reminders *store.ReminderStore
	settings  *store.SettingsStore
	clock     *clock.Fake
	events    *eventLog
	metrics   *metrics.ReminderMetrics
	serial    *sync.Mutex
}

func grantedGate(ctrl *gomock.Controller) *domain.MockPermissionGate {
	gate := domain.NewMockPermissionGate(ctrl)
	gate.EXPECT().Request(gomock.Any()).Return(domain.PermissionGranted, nil).AnyTimes()
	gate.EXPECT().Status(gomock.Any()).Return(domain.PermissionGranted, nil).AnyTimes()
	return gate
}

func newFixture(t *testing.T, gate domain.PermissionGate, port func(*clock.Fake) domain.AlarmPort) *fixture {
	t.Helper()

	blobs := blobstore.NewMemoryStore()
	clk := clock.NewFake(baseTime)
	reminders := store.NewReminderStore(blobs, clk)
	settings := store.NewSettingsStore(blobs, domain.ClockTime{Hour: 9})

	reminderMetrics, err := metrics.NewReminderMetrics()
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	events := &eventLog{}
	serial := &sync.Mutex{}
	e := NewEngine(reminders, settings, port(clk), gate, events, reminderMetrics, clk, serial, Options{
		MinDurationMinutes:   15,
		MaxDurationMinutes:   180,
		DefaultSnoozeMinutes: 10,
		Location:             jst,
		AlarmTitle:           "Reminder",
	})

	return &fixture{
		engine:    e,
		reminders: reminders,
		settings:  settings,
		clock:     clk,
		events:    events,
		metrics:   reminderMetrics,
		serial:    serial,
	}
}

func newImmediateFixture(t *testing.T) (*fixture, *alarm.Immediate) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gate := grantedGate(ctrl)

	var port *alarm.Immediate
	f := newFixture(t, gate, func(clk *clock.Fake) domain.AlarmPort {
		port = alarm.NewImmediate(gate, clk)
		return port
	})
	return f, port
}

// queueLog records every call a durable port makes against its task queue.
type queueLog struct {
	mu         sync.Mutex
	registered []*taskqueue.NotificationTask
	deleted    []string

	// onDelete runs inside DeleteTask, before it returns.
	onDelete func()
}

func (q *queueLog) register(_ context.Context, task *taskqueue.NotificationTask) (*taskqueue.TaskResponse, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.registered = append(q.registered, task)
	return &taskqueue.TaskResponse{Name: task.TaskID, ScheduleTime: task.ScheduleAt}, nil
}

func (q *queueLog) delete(_ context.Context, taskID string) error {
	q.mu.Lock()
	hook := q.onDelete
	q.deleted = append(q.deleted, taskID)
	q.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (q *queueLog) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.registered = nil
	q.deleted = nil
}

func (q *queueLog) registeredFor(id int32) []*taskqueue.NotificationTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*taskqueue.NotificationTask
	for _, task := range q.registered {
		if task.ReminderID == id {
			out = append(out, task)
		}
	}
	return out
}

func (q *queueLog) deletedFor(id int32) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	prefix := fmt.Sprintf("reminder-%d-", id)
	var out []string
	for _, taskID := range q.deleted {
		if strings.HasPrefix(taskID, prefix) {
			out = append(out, taskID)
		}
	}
	return out
}

func newDurableFixture(t *testing.T) (*fixture, *alarm.Durable, *queueLog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gate := grantedGate(ctrl)
	queue := taskqueue.NewMockTaskQueue(ctrl)
	log := &queueLog{}

	queue.EXPECT().RegisterNotification(gomock.Any(), gomock.Any()).DoAndReturn(log.register).AnyTimes()
	queue.EXPECT().DeleteTask(gomock.Any(), gomock.Any()).DoAndReturn(log.delete).AnyTimes()

	var port *alarm.Durable
	f := newFixture(t, gate, func(clk *clock.Fake) domain.AlarmPort {
		port = alarm.NewDurable(queue, gate, blobstore.NewMemoryStore(), clk)
		return port
	})
	return f, port, log
}

func TestEngine_CreateBuyMilk(t *testing.T) {
	ctx := context.Background()
	f, port := newImmediateFixture(t)

	out, err := f.engine.Create(ctx, "  Buy milk ", 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if out.Degraded {
		t.Error("expected a fully scheduled reminder")
	}

	r := out.Reminder
	if r.Text != "Buy milk" {
		t.Errorf("text = %q, want trimmed", r.Text)
	}
	if r.Remaining != 1800 {
		t.Errorf("remaining = %d, want 1800", r.Remaining)
	}
	if !r.TargetTime.Equal(baseTime.Add(30 * time.Minute)) {
		t.Errorf("target = %v", r.TargetTime)
	}
	if r.Notified {
		t.Error("new reminder must not be notified")
	}
	if got := port.PendingIDs(); !slices.Equal(got, []int32{r.ID}) {
		t.Errorf("pending = %v, want [%d]", got, r.ID)
	}
	if f.reminders.Len() != 1 {
		t.Errorf("store size = %d, want 1", f.reminders.Len())
	}
	if got := f.events.kinds(); !slices.Equal(got, []domain.EventKind{domain.EventCreated}) {
		t.Errorf("events = %v", got)
	}
}

func TestEngine_CreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		duration int
	}{
		{name: "empty text", text: "", duration: 30},
		{name: "whitespace only", text: "   \t", duration: 30},
		{name: "duration below minimum", text: "Tea", duration: 14},
		{name: "duration above maximum", text: "Tea", duration: 181},
		{name: "override without text", text: "[5]   ", duration: 30},
		{name: "override above a day", text: "[1441] Tea", duration: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No permission request may happen for rejected input.
			gate := domain.NewMockPermissionGate(ctrl)
			port := domain.NewMockAlarmPort(ctrl)
			port.EXPECT().Mode().Return(domain.DeliveryImmediate).AnyTimes()

			f := newFixture(t, gate, func(*clock.Fake) domain.AlarmPort { return port })

			_, err := f.engine.Create(context.Background(), tt.text, tt.duration)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if f.reminders.Len() != 0 {
				t.Errorf("store size = %d, want 0", f.reminders.Len())
			}
		})
	}
}

func TestEngine_CreateDurationOverride(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantText      string
		wantRemaining int64
	}{
		{name: "one minute", text: "[1] Quick test", wantText: "Quick test", wantRemaining: 60},
		{name: "zero fires now", text: "[0]Now", wantText: "Now", wantRemaining: 0},
		{name: "beyond normal range", text: "[240] Long", wantText: "Long", wantRemaining: 14400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newImmediateFixture(t)

			out, err := f.engine.Create(context.Background(), tt.text, 30)
			if err != nil {
				t.Fatalf("create failed: %v", err)
			}
			if out.Reminder.Text != tt.wantText {
				t.Errorf("text = %q, want %q", out.Reminder.Text, tt.wantText)
			}
			if out.Reminder.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", out.Reminder.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestEngine_CreatePermissionDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := domain.NewMockPermissionGate(ctrl)
	gate.EXPECT().Request(gomock.Any()).Return(domain.PermissionDenied, nil)

	port := domain.NewMockAlarmPort(ctrl)
	port.EXPECT().Mode().Return(domain.DeliveryDurable).AnyTimes()

	f := newFixture(t, gate, func(*clock.Fake) domain.AlarmPort { return port })

	_, err := f.engine.Create(context.Background(), "Call mom", 15)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if f.reminders.Len() != 0 {
		t.Errorf("store size = %d, want 0", f.reminders.Len())
	}
}

func TestEngine_CreateDegradesWhenSchedulingFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	port := domain.NewMockAlarmPort(ctrl)
	port.EXPECT().Mode().Return(domain.DeliveryDurable).AnyTimes()
	port.EXPECT().Schedule(gomock.Any(), gomock.Any()).Return(domain.ErrAlarmScheduling)

	f := newFixture(t, grantedGate(ctrl), func(*clock.Fake) domain.AlarmPort { return port })

	out, err := f.engine.Create(context.Background(), "Water plants", 45)
	if err != nil {
		t.Fatalf("scheduling failure must not fail create: %v", err)
	}
	if !out.Degraded {
		t.Error("expected degraded outcome")
	}
	if _, ok := f.reminders.Get(out.Reminder.ID); !ok {
		t.Error("reminder must stay visible after scheduling failure")
	}
	want := []domain.EventKind{domain.EventScheduleFailed, domain.EventCreated}
	if got := f.events.kinds(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestEngine_AllocatesDistinctIDsWithinOneMillisecond(t *testing.T) {
	ctx := context.Background()
	f, _ := newImmediateFixture(t)

	seen := make(map[int32]bool)
	var last int32
	for i := 0; i < 5; i++ {
		out, err := f.engine.Create(ctx, "same instant", 30)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id := out.Reminder.ID
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		if i > 0 && id <= last {
			t.Errorf("id %d not greater than previous %d", id, last)
		}
		seen[id] = true
		last = id
	}
}

func TestEngine_SnoozeCallMom(t *testing.T) {
	ctx := context.Background()
	f, port := newImmediateFixture(t)

	created, err := f.engine.Create(ctx, "Call mom", 15)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.clock.Advance(5 * time.Minute)

	out, err := f.engine.Snooze(ctx, created.Reminder.ID, 30)
	if err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	if out == nil {
		t.Fatal("expected outcome for existing reminder")
	}
	if out.Reminder.Remaining != 1800 {
		t.Errorf("remaining = %d, want 1800", out.Reminder.Remaining)
	}
	if out.Reminder.Notified {
		t.Error("snooze must reset notified")
	}
	if out.Reminder.OriginalDuration != 1800 {
		t.Errorf("original duration = %d, want 1800", out.Reminder.OriginalDuration)
	}
	if got := port.PendingIDs(); !slices.Equal(got, []int32{created.Reminder.ID}) {
		t.Errorf("pending = %v, want exactly one alarm", got)
	}
}

func TestEngine_SnoozeDurableCancelsBeforeRegister(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	gate := grantedGate(ctrl)
	queue := taskqueue.NewMockTaskQueue(ctrl)

	var port *alarm.Durable
	f := newFixture(t, gate, func(clk *clock.Fake) domain.AlarmPort {
		port = alarm.NewDurable(queue, gate, blobstore.NewMemoryStore(), clk)
		return port
	})

	register := func(_ context.Context, task *taskqueue.NotificationTask) (*taskqueue.TaskResponse, error) {
		return &taskqueue.TaskResponse{Name: task.TaskID}, nil
	}

	var firstTask string
	gomock.InOrder(
		queue.EXPECT().RegisterNotification(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, task *taskqueue.NotificationTask) (*taskqueue.TaskResponse, error) {
				firstTask = task.TaskID
				return register(ctx, task)
			}),
		queue.EXPECT().DeleteTask(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, taskID string) error {
				if taskID != firstTask {
					t.Errorf("deleted %q, want %q", taskID, firstTask)
				}
				return nil
			}),
		queue.EXPECT().RegisterNotification(gomock.Any(), gomock.Any()).DoAndReturn(register),
	)

	created, err := f.engine.Create(ctx, "Call mom", 15)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	f.clock.Advance(time.Minute)

	if _, err := f.engine.Snooze(ctx, created.Reminder.ID, 30); err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	if got := port.PendingIDs(); !slices.Equal(got, []int32{created.Reminder.ID}) {
		t.Errorf("pending = %v, want exactly one alarm", got)
	}
}

func TestEngine_SnoozeUnknownIsNoop(t *testing.T) {
	f, _ := newImmediateFixture(t)

	out, err := f.engine.Snooze(context.Background(), 12345, 10)
	if err != nil || out != nil {
		t.Errorf("Snooze(unknown) = %v, %v, want nil, nil", out, err)
	}
}

func TestEngine_SnoozeRejectsNonPositiveMinutes(t *testing.T) {
	ctx := context.Background()
	f, _ := newImmediateFixture(t)

	created, _ := f.engine.Create(ctx, "Tea", 15)
	for _, minutes := range []int{0, -5} {
		if _, err := f.engine.Snooze(ctx, created.Reminder.ID, minutes); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Snooze(%d) error = %v, want ErrInvalidInput", minutes, err)
		}
	}
}

func TestEngine_DeferAllAtElevenPM(t *testing.T) {
	ctx := context.Background()
	f, port := newImmediateFixture(t)

	f.clock.Set(time.Date(2026, 3, 10, 22, 0, 0, 0, jst))
	expired, err := f.engine.Create(ctx, "[0] already due", 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.clock.Set(time.Date(2026, 3, 10, 23, 0, 0, 0, jst))
	a, _ := f.engine.Create(ctx, "Read", 30)
	b, _ := f.engine.Create(ctx, "Stretch", 90)

	res, err := f.engine.DeferAll(ctx, 9, 0)
	if err != nil {
		t.Fatalf("defer failed: %v", err)
	}

	wantTarget := time.Date(2026, 3, 11, 9, 0, 0, 0, jst)
	if !res.Target.Equal(wantTarget) {
		t.Errorf("target = %v, want %v", res.Target, wantTarget)
	}
	if res.GapSeconds != 10*60*60 {
		t.Errorf("gap = %d, want 36000", res.GapSeconds)
	}
	if len(res.Reminders) != 2 {
		t.Fatalf("deferred %d reminders, want 2", len(res.Reminders))
	}

	for _, id := range []int32{a.Reminder.ID, b.Reminder.ID} {
		r, _ := f.reminders.Get(id)
		if !r.TargetTime.Equal(wantTarget) {
			t.Errorf("reminder %d target = %v", id, r.TargetTime)
		}
		if r.OriginalDuration != 36000 {
			t.Errorf("reminder %d original duration = %d", id, r.OriginalDuration)
		}
		if r.Notified || r.Remaining <= 0 {
			t.Errorf("reminder %d not re-armed: %+v", id, r)
		}
	}

	untouched, _ := f.reminders.Get(expired.Reminder.ID)
	if !untouched.TargetTime.Equal(expired.Reminder.TargetTime) || untouched.Remaining != 0 {
		t.Errorf("due reminder was deferred: %+v", untouched)
	}

	if got := port.PendingIDs(); len(got) != 3 {
		t.Errorf("pending = %v, want one alarm per reminder", got)
	}
}

func TestEngine_DeferAllNothingToDefer(t *testing.T) {
	ctx := context.Background()
	f, _ := newImmediateFixture(t)

	if _, err := f.engine.Create(ctx, "[0] done", 30); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	before := f.engine.List()

	_, err := f.engine.DeferAll(ctx, 9, 0)
	if !errors.Is(err, domain.ErrNothingToDefer) {
		t.Fatalf("expected ErrNothingToDefer, got %v", err)
	}
	if after := f.engine.List(); !slices.Equal(before, after) {
		t.Errorf("store changed: before %+v after %+v", before, after)
	}
}

func TestEngine_DeferAllInvalidTime(t *testing.T) {
	f, _ := newImmediateFixture(t)

	if _, err := f.engine.DeferAll(context.Background(), 24, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEngine_DeferAllToConfigured(t *testing.T) {
	ctx := context.Background()
	f, _ := newImmediateFixture(t)

	if err := f.settings.SetDeferTo(ctx, domain.ClockTime{Hour: 7, Minute: 30}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := f.engine.Create(ctx, "Read", 30); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	res, err := f.engine.DeferAllToConfigured(ctx)
	if err != nil {
		t.Fatalf("defer failed: %v", err)
	}

	// 08:00 has passed 07:30, so tomorrow.
	want := time.Date(2026, 3, 11, 7, 30, 0, 0, jst)
	if !res.Target.Equal(want) {
		t.Errorf("target = %v, want %v", res.Target, want)
	}
}

func TestEngine_Dismiss(t *testing.T) {
	ctx := context.Background()
	f, port := newImmediateFixture(t)

	created, _ := f.engine.Create(ctx, "Tea", 15)

	if err := f.engine.Dismiss(ctx, created.Reminder.ID); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if f.reminders.Len() != 0 {
		t.Error("reminder not removed")
	}
	if len(port.PendingIDs()) != 0 {
		t.Error("alarm not cancelled")
	}

	if err := f.engine.Dismiss(ctx, created.Reminder.ID); err != nil {
		t.Errorf("second dismiss = %v, want nil", err)
	}
}

func TestEngine_CleanupExpiredKeepsExactSurvivors(t *testing.T) {
	ctx := context.Background()
	f, port := newImmediateFixture(t)

	var due, pending []int32
	for i, in := range []struct {
		text     string
		duration int
	}{
		{"[1] due soon", 30},
		{"later", 60},
		{"[2] also due", 30},
		{"much later", 180},
	} {
		out, err := f.engine.Create(ctx, in.text, in.duration)
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		if in.duration == 30 {
			due = append(due, out.Reminder.ID)
		} else {
			pending = append(pending, out.Reminder.ID)
		}
	}

	f.clock.Advance(10 * time.Minute)

	// notified is not authoritative: a pending reminder wrongly flagged survives.
	if _, err := f.reminders.UpdateAll(ctx,
		func(r *domain.Reminder) bool { return r.ID == pending[0] },
		func(r *domain.Reminder) { r.Notified = true },
	); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	removed, err := f.engine.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != len(due) {
		t.Errorf("removed = %d, want %d", removed, len(due))
	}

	var survivors []int32
	for _, r := range f.engine.List() {
		survivors = append(survivors, r.ID)
	}
	slices.Sort(survivors)
	slices.Sort(pending)
	if !slices.Equal(survivors, pending) {
		t.Errorf("survivors = %v, want %v", survivors, pending)
	}
	if got := port.PendingIDs(); !slices.Equal(got, pending) {
		t.Errorf("pending alarms = %v, want %v", got, pending)
	}
}

func TestEngine_HandleAction(t *testing.T) {
	ctx := context.Background()
	f, _ := newImmediateFixture(t)

	created, _ := f.engine.Create(ctx, "Tea", 15)
	f.clock.Advance(20 * time.Minute)

	if err := f.engine.HandleAction(ctx, created.Reminder.ID, domain.ActionSnooze); err != nil {
		t.Fatalf("snooze action failed: %v", err)
	}
	r, _ := f.reminders.Get(created.Reminder.ID)
	if r.Remaining != 600 {
		t.Errorf("remaining after default snooze = %d, want 600", r.Remaining)
	}

	if err := f.engine.HandleAction(ctx, created.Reminder.ID, "open"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("unknown action error = %v, want ErrInvalidInput", err)
	}

	if err := f.engine.HandleAction(ctx, created.Reminder.ID, domain.ActionDismiss); err != nil {
		t.Fatalf("dismiss action failed: %v", err)
	}
	if f.reminders.Has(created.Reminder.ID) {
		t.Error("dismiss action did not remove the reminder")
	}

	// Actions racing a dismissal are silently ignored.
	if err := f.engine.HandleAction(ctx, created.Reminder.ID, domain.ActionSnooze); err != nil {
		t.Errorf("snooze after dismiss = %v, want nil", err)
	}
}

func TestEngine_SnoozeAfterAlertResetsNotified(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	gate := grantedGate(ctrl)
	sink := domain.NewMockAlertSink(ctrl)

	var port *alarm.Immediate
	f := newFixture(t, gate, func(clk *clock.Fake) domain.AlarmPort {
		port = alarm.NewImmediate(gate, clk)
		return port
	})
	loop := reconcile.NewLoop(f.reminders, port, sink, f.events, f.metrics, f.clock, f.serial, reconcile.Config{AlarmTitle: "Reminder"})

	created, err := f.engine.Create(ctx, "Buy milk", 15)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := created.Reminder.ID

	sink.EXPECT().Display(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.clock.Advance(16 * time.Minute)
	if res := loop.Tick(ctx); res.Dispatched != 1 {
		t.Fatalf("dispatched = %d, want 1", res.Dispatched)
	}

	alerted, _ := f.reminders.Get(id)
	if !alerted.Notified || alerted.Remaining != 0 {
		t.Fatalf("after alert: notified=%v remaining=%d, want true and 0", alerted.Notified, alerted.Remaining)
	}

	out, err := f.engine.Snooze(ctx, id, 10)
	if err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	if out == nil {
		t.Fatal("expected outcome for an alerted reminder")
	}

	r, _ := f.reminders.Get(id)
	if r.Notified {
		t.Error("snooze must reset notified on an alerted reminder")
	}
	if r.Remaining != 600 {
		t.Errorf("remaining = %d, want 600", r.Remaining)
	}
	if got := port.PendingIDs(); !slices.Equal(got, []int32{id}) {
		t.Errorf("pending = %v, want exactly one alarm for %d", got, id)
	}

	// The snoozed reminder alerts again once it comes due.
	sink.EXPECT().Display(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.clock.Advance(10 * time.Minute)
	if res := loop.Tick(ctx); res.Dispatched != 1 {
		t.Errorf("dispatched after snooze = %d, want 1", res.Dispatched)
	}
}

func TestEngine_DeferAllDurableLeavesDueReminderAlone(t *testing.T) {
	ctx := context.Background()
	f, port, queue := newDurableFixture(t)

	due, err := f.engine.Create(ctx, "[1] Stretch", 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	pending, err := f.engine.Create(ctx, "Call mom", 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.clock.Advance(2 * time.Minute)
	queue.reset()

	res, err := f.engine.DeferAll(ctx, 9, 0)
	if err != nil {
		t.Fatalf("defer failed: %v", err)
	}

	if got := queue.deletedFor(due.Reminder.ID); len(got) != 0 {
		t.Errorf("due reminder's alarm was deleted: %v", got)
	}
	if got := queue.registeredFor(due.Reminder.ID); len(got) != 0 {
		t.Errorf("due reminder's alarm was registered again: %d times", len(got))
	}
	if got := queue.deletedFor(pending.Reminder.ID); len(got) != 1 {
		t.Errorf("pending reminder deletes = %d, want 1", len(got))
	}

	wantTarget := time.Date(2026, 3, 10, 9, 0, 0, 0, jst)
	registered := queue.registeredFor(pending.Reminder.ID)
	if len(registered) != 1 || !registered[0].ScheduleAt.Equal(wantTarget) {
		t.Errorf("pending reminder registrations = %+v, want one at %v", registered, wantTarget)
	}

	if len(res.Reminders) != 1 || res.Reminders[0].ID != pending.Reminder.ID {
		t.Errorf("deferred = %+v, want only %d", res.Reminders, pending.Reminder.ID)
	}
	stored, _ := f.reminders.Get(due.Reminder.ID)
	if !stored.TargetTime.Equal(due.Reminder.TargetTime) || stored.Remaining != 0 {
		t.Errorf("due reminder changed: target=%v remaining=%d", stored.TargetTime, stored.Remaining)
	}
	if got := port.PendingIDs(); !slices.Equal(got, sortedIDs(due.Reminder.ID, pending.Reminder.ID)) {
		t.Errorf("pending alarms = %v", got)
	}
}

func TestEngine_DeferAllRestoresReminderThatCameDueWhileCancelling(t *testing.T) {
	ctx := context.Background()
	f, port, queue := newDurableFixture(t)

	soon, err := f.engine.Create(ctx, "[1] Take the pizza out", 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	later, err := f.engine.Create(ctx, "Water plants", 60)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.clock.Advance(59 * time.Second)
	queue.reset()

	// The first deletion is slow enough for the pizza reminder to come due.
	var slow sync.Once
	queue.onDelete = func() { slow.Do(func() { f.clock.Advance(2 * time.Second) }) }

	res, err := f.engine.DeferAll(ctx, 9, 0)
	if err != nil {
		t.Fatalf("defer failed: %v", err)
	}

	if len(res.Reminders) != 1 || res.Reminders[0].ID != later.Reminder.ID {
		t.Fatalf("deferred = %+v, want only %d", res.Reminders, later.Reminder.ID)
	}

	stored, _ := f.reminders.Get(soon.Reminder.ID)
	if !stored.TargetTime.Equal(soon.Reminder.TargetTime) {
		t.Errorf("target = %v, want untouched %v", stored.TargetTime, soon.Reminder.TargetTime)
	}
	if stored.Remaining != 0 || stored.Notified {
		t.Errorf("remaining=%d notified=%v, want 0 and false", stored.Remaining, stored.Notified)
	}

	restored := queue.registeredFor(soon.Reminder.ID)
	if len(restored) != 1 {
		t.Fatalf("restored registrations = %d, want 1", len(restored))
	}
	if restored[0].ScheduleAt.After(f.clock.Now()) {
		t.Errorf("restored alarm at %v, want immediately (now %v)", restored[0].ScheduleAt, f.clock.Now())
	}
	if !port.Backs(soon.Reminder.ID) {
		t.Error("restored alarm must back the due reminder")
	}

	if got := f.events.idsOf(domain.EventDeferred); !slices.Equal(got, []int32{later.Reminder.ID}) {
		t.Errorf("deferred events = %v, want [%d]", got, later.Reminder.ID)
	}
}

func sortedIDs(ids ...int32) []int32 {
	slices.Sort(ids)
	return ids
}
