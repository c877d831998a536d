package config

import (
	"fmt"
	"os"
	"strconv"
)

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

func LoadTelegramConfig() (*TelegramConfig, error) {
	cfg := &TelegramConfig{BotToken: os.Getenv("TELEGRAM_BOT_TOKEN")}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChatID, raw)
		}
		cfg.ChatID = id
	}

	return cfg, nil
}

func (c *TelegramConfig) Enabled() bool {
	return c != nil && c.BotToken != ""
}
