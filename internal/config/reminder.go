package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const (
	minDurationMinutesEnv   = "MIN_DURATION_MINUTES"
	maxDurationMinutesEnv   = "MAX_DURATION_MINUTES"
	defaultSnoozeMinutesEnv = "DEFAULT_SNOOZE_MINUTES"
	defaultDeferToEnv       = "DEFAULT_DEFER_TO"
	tickIntervalMsEnv       = "TICK_INTERVAL_MS"
	alarmTitleEnv           = "ALARM_TITLE"
	cleanupScheduleEnv      = "CLEANUP_SCHEDULE"

	defaultMinDurationMinutes = 15
	defaultMaxDurationMinutes = 180
	defaultSnoozeMinutes      = 10
	defaultDeferTo            = "09:00"
	defaultTickIntervalMs     = 1000
	defaultAlarmTitle         = "Reminder"
	defaultCleanupSchedule    = "0 0 * * *"
)

type ReminderConfig struct {
	MinDurationMinutes   int
	MaxDurationMinutes   int
	DefaultSnoozeMinutes int
	DefaultDeferTo       domain.ClockTime
	TickInterval         time.Duration
	AlarmTitle           string
	CleanupSchedule      string
}

func LoadReminderConfig() (*ReminderConfig, error) {
	deferToRaw := os.Getenv(defaultDeferToEnv)
	if deferToRaw == "" {
		deferToRaw = defaultDeferTo
	}
	deferTo, err := domain.ParseClockTime(deferToRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeferTo, deferToRaw)
	}

	alarmTitle := os.Getenv(alarmTitleEnv)
	if alarmTitle == "" {
		alarmTitle = defaultAlarmTitle
	}

	cleanupSchedule := os.Getenv(cleanupScheduleEnv)
	if cleanupSchedule == "" {
		cleanupSchedule = defaultCleanupSchedule
	}

	return &ReminderConfig{
		MinDurationMinutes:   positiveIntEnv(minDurationMinutesEnv, defaultMinDurationMinutes),
		MaxDurationMinutes:   positiveIntEnv(maxDurationMinutesEnv, defaultMaxDurationMinutes),
		DefaultSnoozeMinutes: positiveIntEnv(defaultSnoozeMinutesEnv, defaultSnoozeMinutes),
		DefaultDeferTo:       deferTo,
		TickInterval:         time.Duration(positiveIntEnv(tickIntervalMsEnv, defaultTickIntervalMs)) * time.Millisecond,
		AlarmTitle:           alarmTitle,
		CleanupSchedule:      cleanupSchedule,
	}, nil
}

func (c *ReminderConfig) Validate() error {
	if c.MinDurationMinutes > c.MaxDurationMinutes {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidDuration, c.MinDurationMinutes, c.MaxDurationMinutes)
	}
	return nil
}

// positiveIntEnv falls back to def for missing, malformed or non-positive values.
func positiveIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
