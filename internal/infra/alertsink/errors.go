package alertsink

import "errors"

var (
	ErrMissingToken     = errors.New("telegram bot token is required")
	ErrMissingChatID    = errors.New("telegram chat id is required")
	ErrInvalidCallback  = errors.New("invalid callback data")
	ErrChatUnreachable  = errors.New("telegram chat unreachable")
	ErrAlreadyListening = errors.New("telegram listener already running")
)
