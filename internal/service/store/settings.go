package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const (
	settingsKey           = "settings"
	onboardingCompleteKey = "onboarding_complete"
	permissionKey         = "notification_permission"
)

type settingsRecord struct {
	DeferTo string `json:"defer_to"`
}

// SettingsStore persists user preferences and flags, each under its own key.
type SettingsStore struct {
	blobs          domain.BlobStore
	defaultDeferTo domain.ClockTime
}

func NewSettingsStore(blobs domain.BlobStore, defaultDeferTo domain.ClockTime) *SettingsStore {
	return &SettingsStore{
		blobs:          blobs,
		defaultDeferTo: defaultDeferTo,
	}
}

// DeferTo returns the configured defer-all target, falling back to the
// default when nothing valid was saved.
func (s *SettingsStore) DeferTo(ctx context.Context) (domain.ClockTime, error) {
	var rec settingsRecord
	found, err := s.load(ctx, settingsKey, &rec)
	if err != nil {
		return domain.ClockTime{}, err
	}
	if !found || rec.DeferTo == "" {
		return s.defaultDeferTo, nil
	}

	ct, err := domain.ParseClockTime(rec.DeferTo)
	if err != nil {
		return s.defaultDeferTo, nil
	}
	return ct, nil
}

func (s *SettingsStore) SetDeferTo(ctx context.Context, ct domain.ClockTime) error {
	if !ct.Valid() {
		return fmt.Errorf("%w: defer-to time %02d:%02d", domain.ErrInvalidInput, ct.Hour, ct.Minute)
	}
	return s.save(ctx, settingsKey, settingsRecord{DeferTo: ct.String()})
}

func (s *SettingsStore) OnboardingComplete(ctx context.Context) (bool, error) {
	var done bool
	if _, err := s.load(ctx, onboardingCompleteKey, &done); err != nil {
		return false, err
	}
	return done, nil
}

func (s *SettingsStore) SetOnboardingComplete(ctx context.Context, done bool) error {
	return s.save(ctx, onboardingCompleteKey, done)
}

// Permission returns the remembered notification decision, undetermined when
// the user was never asked.
func (s *SettingsStore) Permission(ctx context.Context) (domain.PermissionStatus, error) {
	var status domain.PermissionStatus
	found, err := s.load(ctx, permissionKey, &status)
	if err != nil {
		return domain.PermissionUndetermined, err
	}
	if !found {
		return domain.PermissionUndetermined, nil
	}

	switch status {
	case domain.PermissionGranted, domain.PermissionDenied, domain.PermissionUndetermined:
		return status, nil
	default:
		return domain.PermissionUndetermined, nil
	}
}

func (s *SettingsStore) SetPermission(ctx context.Context, status domain.PermissionStatus) error {
	switch status {
	case domain.PermissionGranted, domain.PermissionDenied, domain.PermissionUndetermined:
	default:
		return fmt.Errorf("%w: permission status %q", domain.ErrInvalidInput, status)
	}
	return s.save(ctx, permissionKey, status)
}

func (s *SettingsStore) load(ctx context.Context, key string, v any) (bool, error) {
	blob, err := s.blobs.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if len(blob) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *SettingsStore) save(ctx context.Context, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.blobs.Save(ctx, key, blob); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
