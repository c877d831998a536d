package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ReminderResponse struct {
	ID                      int32     `json:"id"`
	Text                    string    `json:"text"`
	TargetTime              time.Time `json:"target_time"`
	RemainingSeconds        int64     `json:"remaining_seconds"`
	OriginalDurationSeconds int64     `json:"original_duration_seconds"`
	Notified                bool      `json:"notified"`
	CreatedAt               time.Time `json:"created_at"`
	State                   string    `json:"state"`
}

func toReminderResponse(r domain.Reminder, now time.Time) ReminderResponse {
	return ReminderResponse{
		ID:                      r.ID,
		Text:                    r.Text,
		TargetTime:              r.TargetTime,
		RemainingSeconds:        r.Remaining,
		OriginalDurationSeconds: r.OriginalDuration,
		Notified:                r.Notified,
		CreatedAt:               r.CreatedAt,
		State:                   r.StateAt(now).String(),
	}
}

func toReminderResponses(rs []domain.Reminder, now time.Time) []ReminderResponse {
	out := make([]ReminderResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReminderResponse(r, now))
	}
	return out
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, ErrorResponse{Error: errType, Message: message})
}

// respondDomainError maps engine errors onto HTTP statuses.
func respondDomainError(c *gin.Context, operation string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		slog.WarnContext(ctx, "invalid input",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		slog.WarnContext(ctx, "notification permission denied", slog.String("operation", operation))
		respondError(c, http.StatusForbidden, "permission_denied", "notification permission is required")
	default:
		slog.ErrorContext(ctx, "operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "processing_error", "failed to process "+operation)
	}
}
