package config

import (
	"errors"
	"fmt"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

// ValidateForRun checks cross-field consistency that Load cannot see field
// by field.
func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Reminder.Validate(); err != nil {
		errs = append(errs, err)
	}

	if cfg.Storage.Backend == StorageRedis {
		if err := cfg.Redis.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.Telegram.Enabled() && cfg.Telegram.ChatID == 0 {
		errs = append(errs, ErrChatIDMissing)
	}

	if cfg.DeliveryMode == domain.DeliveryDurable {
		if err := cfg.TaskQueue.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}
