package alertsink

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

const updateTimeoutSeconds = 30

const answerFailed = "Action failed, please try again"

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramSink delivers alerts as chat messages with snooze and dismiss
// buttons, and turns button presses back into alarm actions.
type TelegramSink struct {
	api       botAPI
	chatID    int64
	listening atomic.Bool
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if chatID == 0 {
		return nil, ErrMissingChatID
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	slog.Info("telegram alert sink authorized",
		slog.String("bot", api.Self.UserName),
		slog.Int64("chat_id", chatID),
	)

	return newTelegramSink(api, chatID), nil
}

func newTelegramSink(api botAPI, chatID int64) *TelegramSink {
	return &TelegramSink{api: api, chatID: chatID}
}

func (s *TelegramSink) Display(ctx context.Context, alert domain.Alert) error {
	msg := tgbotapi.NewMessage(s.chatID, formatAlert(alert))
	msg.ParseMode = tgbotapi.ModeHTML
	if kb := alertKeyboard(alert.ReminderID, alert.Actions); kb != nil {
		msg.ReplyMarkup = kb
	}

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send alert for reminder %d: %w", alert.ReminderID, err)
	}

	slog.DebugContext(ctx, "telegram alert sent",
		slog.Int("reminder_id", int(alert.ReminderID)),
		slog.Int64("chat_id", s.chatID),
	)
	return nil
}

// Probe checks the bot can see the configured chat.
func (s *TelegramSink) Probe(context.Context) error {
	_, err := s.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: s.chatID},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChatUnreachable, err)
	}
	return nil
}

// Listen long-polls for button presses and forwards them to handler until
// ctx is done.
func (s *TelegramSink) Listen(ctx context.Context, handler domain.ActionHandler) error {
	if !s.listening.CompareAndSwap(false, true) {
		return ErrAlreadyListening
	}
	defer s.listening.Store(false)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds
	updates := s.api.GetUpdatesChan(u)
	defer s.api.StopReceivingUpdates()

	slog.InfoContext(ctx, "telegram listener started", slog.Int64("chat_id", s.chatID))

	for {
		select {
		case <-ctx.Done():
			slog.Info("telegram listener stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.CallbackQuery != nil {
				s.handleCallback(ctx, update.CallbackQuery, handler)
			}
		}
	}
}

func (s *TelegramSink) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, handler domain.ActionHandler) {
	if callback.Message != nil && callback.Message.Chat != nil && callback.Message.Chat.ID != s.chatID {
		s.answer(ctx, callback.ID, "Not allowed")
		return
	}

	action, id, err := parseCallback(callback.Data)
	if err != nil {
		slog.WarnContext(ctx, "ignoring callback",
			slog.String("data", callback.Data),
			slog.String("error", err.Error()),
		)
		s.answer(ctx, callback.ID, "Unknown action")
		return
	}

	if err := handler(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "alarm action failed",
			slog.Int("reminder_id", int(id)),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		// The chat only learns that it failed; the cause stays in the log.
		s.answer(ctx, callback.ID, answerFailed)
		return
	}

	s.answer(ctx, callback.ID, answerText(action))
}

func (s *TelegramSink) answer(ctx context.Context, callbackID, text string) {
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		slog.WarnContext(ctx, "failed to answer callback", slog.String("error", err.Error()))
	}
}

func answerText(action string) string {
	switch action {
	case domain.ActionSnooze:
		return "Snoozed"
	case domain.ActionDismiss:
		return "Dismissed"
	default:
		return ""
	}
}

func formatAlert(alert domain.Alert) string {
	return fmt.Sprintf("🔔 <b>%s</b>\n\n%s",
		tgbotapi.EscapeText(tgbotapi.ModeHTML, alert.Title),
		tgbotapi.EscapeText(tgbotapi.ModeHTML, alert.Body),
	)
}
