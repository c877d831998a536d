package config

import "errors"

var (
	ErrRedisAddrMissing    = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB      = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidTimezone     = errors.New("TIMEZONE must be an IANA time zone name")
	ErrInvalidDeliveryMode = errors.New("DELIVERY_MODE must be immediate or durable")
	ErrInvalidStorage      = errors.New("STORAGE_BACKEND must be disk, redis, sqlite or memory")
	ErrInvalidDeferTo      = errors.New("DEFAULT_DEFER_TO must be HH:MM")
	ErrInvalidDuration     = errors.New("reminder duration bounds are invalid")
	ErrInvalidChatID       = errors.New("TELEGRAM_CHAT_ID must be an integer")
	ErrChatIDMissing       = errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
)
