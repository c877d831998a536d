package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const remindersKey = "reminders"

type reminderRecord struct {
	ID               int32  `json:"id"`
	Text             string `json:"text"`
	TargetTime       int64  `json:"target_time"`
	OriginalDuration int64  `json:"original_duration"`
	Notified         bool   `json:"notified"`
	CreatedAt        int64  `json:"created_at"`
}

func toRecord(r *domain.Reminder) reminderRecord {
	return reminderRecord{
		ID:               r.ID,
		Text:             r.Text,
		TargetTime:       r.TargetTime.UnixMilli(),
		OriginalDuration: r.OriginalDuration,
		Notified:         r.Notified,
		CreatedAt:        r.CreatedAt.UnixMilli(),
	}
}

func (rec reminderRecord) toDomain(now time.Time) *domain.Reminder {
	r := &domain.Reminder{
		ID:               rec.ID,
		Text:             rec.Text,
		TargetTime:       time.UnixMilli(rec.TargetTime),
		OriginalDuration: rec.OriginalDuration,
		Notified:         rec.Notified,
		CreatedAt:        time.UnixMilli(rec.CreatedAt),
	}
	r.Recompute(now)
	return r
}

// ReminderStore holds the reminder collection in memory and mirrors every
// mutation to the blob store. A mutation becomes visible only after its
// flush succeeded.
type ReminderStore struct {
	mu        sync.RWMutex
	blobs     domain.BlobStore
	clock     clock.Clock
	reminders []*domain.Reminder
}

func NewReminderStore(blobs domain.BlobStore, clk clock.Clock) *ReminderStore {
	return &ReminderStore{
		blobs: blobs,
		clock: clk,
	}
}

// Load replaces the in-memory collection with the persisted one.
func (s *ReminderStore) Load(ctx context.Context) error {
	blob, err := s.blobs.Load(ctx, remindersKey)
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	var records []reminderRecord
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &records); err != nil {
			return fmt.Errorf("failed to decode reminders: %w", err)
		}
	}

	now := s.clock.Now()
	loaded := make([]*domain.Reminder, 0, len(records))
	seen := make(map[int32]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.ID]; dup {
			slog.WarnContext(ctx, "dropping duplicate persisted reminder",
				slog.Int("reminder_id", int(rec.ID)),
			)
			continue
		}
		seen[rec.ID] = struct{}{}
		loaded = append(loaded, rec.toDomain(now))
	}

	s.mu.Lock()
	s.reminders = loaded
	s.mu.Unlock()

	slog.InfoContext(ctx, "reminders loaded", slog.Int("count", len(loaded)))

	return nil
}

func (s *ReminderStore) Add(ctx context.Context, r *domain.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(r.ID) >= 0 {
		return fmt.Errorf("%w: %d", domain.ErrDuplicateID, r.ID)
	}

	next := append(s.cloneAll(), clone(r))
	return s.commit(ctx, next)
}

// Remove reports whether a reminder with id existed. Unknown ids leave the
// store and the blob untouched.
func (s *ReminderStore) Remove(ctx context.Context, id int32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(s.cloneAll(), idx, idx+1)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveWhere removes every reminder matching pred in one flush and returns
// the removed reminders.
func (s *ReminderStore) RemoveWhere(ctx context.Context, pred func(*domain.Reminder) bool) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var removed []domain.Reminder
	next := make([]*domain.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		c := clone(r)
		c.Recompute(now)
		if pred(c) {
			removed = append(removed, *c)
			continue
		}
		next = append(next, c)
	}

	if len(removed) == 0 {
		return nil, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return removed, nil
}

// UpdateAll applies update to every reminder matching pred and flushes once.
// Remaining is recomputed before pred sees a reminder. It returns the ids of
// the updated reminders in store order.
func (s *ReminderStore) UpdateAll(ctx context.Context, pred func(*domain.Reminder) bool, update func(*domain.Reminder)) ([]int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	next := s.cloneAll()
	var updated []int32
	for _, r := range next {
		r.Recompute(now)
		if !pred(r) {
			continue
		}
		update(r)
		r.Recompute(now)
		updated = append(updated, r.ID)
	}

	if len(updated) == 0 {
		return nil, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return updated, nil
}

// List returns copies of all reminders, newest first, with remaining
// recomputed against the clock.
func (s *ReminderStore) List() []domain.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	out := make([]domain.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		c := *r
		c.Recompute(now)
		out = append(out, c)
	}

	slices.SortStableFunc(out, func(a, b domain.Reminder) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})

	return out
}

func (s *ReminderStore) Get(id int32) (domain.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Reminder{}, false
	}

	r := *s.reminders[idx]
	r.Recompute(s.clock.Now())
	return r, true
}

func (s *ReminderStore) Has(id int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

func (s *ReminderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}

// Refresh recomputes remaining in place. Nothing is persisted since
// remaining is derived.
func (s *ReminderStore) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for _, r := range s.reminders {
		r.Recompute(now)
	}
}

// commit must be called with mu held.
func (s *ReminderStore) commit(ctx context.Context, next []*domain.Reminder) error {
	records := make([]reminderRecord, 0, len(next))
	for _, r := range next {
		records = append(records, toRecord(r))
	}

	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}

	if err := s.blobs.Save(ctx, remindersKey, blob); err != nil {
		slog.ErrorContext(ctx, "failed to persist reminders",
			slog.Int("count", len(next)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to persist reminders: %w", err)
	}

	s.reminders = next
	return nil
}

func (s *ReminderStore) indexOf(id int32) int {
	return slices.IndexFunc(s.reminders, func(r *domain.Reminder) bool {
		return r.ID == id
	})
}

func (s *ReminderStore) cloneAll() []*domain.Reminder {
	out := make([]*domain.Reminder, 0, len(s.reminders)+1)
	for _, r := range s.reminders {
		out = append(out, clone(r))
	}
	return out
}

func clone(r *domain.Reminder) *domain.Reminder {
	c := *r
	return &c
}
