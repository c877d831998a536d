package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type Config struct {
	Port         string
	Location     *time.Location
	DeliveryMode domain.DeliveryMode
	TaskQueue    TaskQueueConfig
	Storage      *StorageConfig
	Redis        *RedisConfig
	Reminder     *ReminderConfig
	Telegram     *TelegramConfig
}

type TaskQueueConfig struct {
	PrimindTasksURL string
	QueueName       string

	GCloudProjectID  string
	GCloudLocationID string
	GCloudQueueID    string
	GCloudTargetURL  string

	MaxRetries int
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	loc, err := loadLocation(os.Getenv("TIMEZONE"))
	if err != nil {
		return nil, err
	}

	mode, err := parseDeliveryMode(os.Getenv("DELIVERY_MODE"))
	if err != nil {
		return nil, err
	}

	queueName := os.Getenv("TASK_QUEUE_NAME")
	if queueName == "" {
		queueName = "default"
	}

	maxRetries := 3
	if v := os.Getenv("TASK_QUEUE_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	storageConfig, err := LoadStorageConfig()
	if err != nil {
		return nil, err
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	reminderConfig, err := LoadReminderConfig()
	if err != nil {
		return nil, err
	}

	telegramConfig, err := LoadTelegramConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:         port,
		Location:     loc,
		DeliveryMode: mode,
		TaskQueue: TaskQueueConfig{
			PrimindTasksURL: os.Getenv("PRIMIND_TASKS_URL"),
			QueueName:       queueName,

			GCloudProjectID:  os.Getenv("GCLOUD_PROJECT_ID"),
			GCloudLocationID: os.Getenv("GCLOUD_LOCATION_ID"),
			GCloudQueueID:    os.Getenv("GCLOUD_QUEUE_ID"),
			GCloudTargetURL:  os.Getenv("GCLOUD_TARGET_URL"),

			MaxRetries: maxRetries,
		},
		Storage:  storageConfig,
		Redis:    redisConfig,
		Reminder: reminderConfig,
		Telegram: telegramConfig,
	}, nil
}

// ParseLogLevel is exported for the platform bootstrap, which builds the
// logger before the rest of the configuration is loaded.
func ParseLogLevel(level string) slog.Level {
	return parseLogLevel(level)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

func parseDeliveryMode(raw string) (domain.DeliveryMode, error) {
	switch domain.DeliveryMode(strings.ToLower(raw)) {
	case "", domain.DeliveryImmediate:
		return domain.DeliveryImmediate, nil
	case domain.DeliveryDurable:
		return domain.DeliveryDurable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryMode, raw)
	}
}
