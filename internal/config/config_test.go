package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

var allEnv = []string{
	"PORT", "LOG_LEVEL", "TIMEZONE", "DELIVERY_MODE",
	"MIN_DURATION_MINUTES", "MAX_DURATION_MINUTES", "DEFAULT_SNOOZE_MINUTES",
	"DEFAULT_DEFER_TO", "TICK_INTERVAL_MS", "ALARM_TITLE", "CLEANUP_SCHEDULE",
	"STORAGE_BACKEND", "STORAGE_PATH", "SQLITE_PATH",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_TLS",
	"PRIMIND_TASKS_URL", "TASK_QUEUE_NAME", "TASK_QUEUE_MAX_RETRIES",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnv {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DeliveryMode != domain.DeliveryImmediate {
		t.Errorf("DeliveryMode = %q", cfg.DeliveryMode)
	}
	if cfg.Storage.Backend != StorageDisk {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.TaskQueue.QueueName != "default" || cfg.TaskQueue.MaxRetries != 3 {
		t.Errorf("TaskQueue = %+v", cfg.TaskQueue)
	}

	r := cfg.Reminder
	if r.MinDurationMinutes != 15 || r.MaxDurationMinutes != 180 || r.DefaultSnoozeMinutes != 10 {
		t.Errorf("duration bounds = %+v", r)
	}
	if r.DefaultDeferTo != (domain.ClockTime{Hour: 9}) {
		t.Errorf("DefaultDeferTo = %v", r.DefaultDeferTo)
	}
	if r.TickInterval != time.Second || r.AlarmTitle != "Reminder" || r.CleanupSchedule != "0 0 * * *" {
		t.Errorf("reminder config = %+v", r)
	}
	if cfg.Telegram.Enabled() {
		t.Error("telegram enabled without a token")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	t.Setenv("DELIVERY_MODE", "DURABLE")
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("DEFAULT_DEFER_TO", "07:30")
	t.Setenv("MIN_DURATION_MINUTES", "-5")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Location.String() != "Asia/Tokyo" {
		t.Errorf("Location = %v", cfg.Location)
	}
	if cfg.DeliveryMode != domain.DeliveryDurable {
		t.Errorf("DeliveryMode = %q", cfg.DeliveryMode)
	}
	if cfg.Reminder.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v", cfg.Reminder.TickInterval)
	}
	if cfg.Reminder.DefaultDeferTo != (domain.ClockTime{Hour: 7, Minute: 30}) {
		t.Errorf("DefaultDeferTo = %v", cfg.Reminder.DefaultDeferTo)
	}
	if cfg.Reminder.MinDurationMinutes != 15 {
		t.Errorf("negative min should fall back to default, got %d", cfg.Reminder.MinDurationMinutes)
	}
	if cfg.Storage.Backend != StorageSQLite {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if !cfg.Telegram.Enabled() || cfg.Telegram.ChatID != -100123 {
		t.Errorf("Telegram = %+v", cfg.Telegram)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "timezone", key: "TIMEZONE", value: "Mars/Olympus", wantErr: ErrInvalidTimezone},
		{name: "delivery mode", key: "DELIVERY_MODE", value: "carrier-pigeon", wantErr: ErrInvalidDeliveryMode},
		{name: "storage", key: "STORAGE_BACKEND", value: "tape", wantErr: ErrInvalidStorage},
		{name: "defer to", key: "DEFAULT_DEFER_TO", value: "9am", wantErr: ErrInvalidDeferTo},
		{name: "redis db", key: "REDIS_DB", value: "zero", wantErr: ErrInvalidRedisDB},
		{name: "chat id", key: "TELEGRAM_CHAT_ID", value: "@me", wantErr: ErrInvalidChatID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateForRun(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "min above max",
			mutate:  func(c *Config) { c.Reminder.MinDurationMinutes = 200 },
			wantErr: []error{ErrInvalidDuration},
		},
		{
			name: "redis backend without addr",
			mutate: func(c *Config) {
				c.Storage.Backend = StorageRedis
				c.Redis.Addr = ""
			},
			wantErr: []error{ErrRedisAddrMissing},
		},
		{
			name: "telegram token without chat and bad bounds",
			mutate: func(c *Config) {
				c.Telegram.BotToken = "token"
				c.Reminder.MaxDurationMinutes = 1
			},
			wantErr: []error{ErrChatIDMissing, ErrInvalidDuration},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			tt.mutate(cfg)

			err = ValidateForRun(cfg)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error = %v, want it to wrap %v", err, want)
				}
			}
		})
	}
}
