package alertsink

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

var actionLabels = map[string]string{
	domain.ActionSnooze:  "⏰ Snooze",
	domain.ActionDismiss: "✅ Dismiss",
}

func alertKeyboard(reminderID int32, actions []string) *tgbotapi.InlineKeyboardMarkup {
	if len(actions) == 0 {
		return nil
	}

	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, action := range actions {
		label, ok := actionLabels[action]
		if !ok {
			label = action
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, callbackData(action, reminderID)))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	return &markup
}

// callbackData encodes an action as "action:id".
func callbackData(action string, reminderID int32) string {
	return fmt.Sprintf("%s:%d", action, reminderID)
}

func parseCallback(data string) (string, int32, error) {
	action, rawID, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidCallback, data)
	}

	id, err := strconv.ParseInt(rawID, 10, 32)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidCallback, data)
	}

	return action, int32(id), nil
}
