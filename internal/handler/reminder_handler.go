package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/service/engine"
)

type CreateReminderRequest struct {
	Text            string `json:"text"`
	DurationMinutes int    `json:"duration_minutes"`
}

type SnoozeRequest struct {
	Minutes *int `json:"minutes"`
}

type DeferAllRequest struct {
	Hour   *int `json:"hour"`
	Minute *int `json:"minute"`
}

type AlarmActionRequest struct {
	ReminderID int32  `json:"reminder_id"`
	ActionID   string `json:"action_id"`
}

type OutcomeResponse struct {
	Reminder ReminderResponse `json:"reminder"`
	Degraded bool             `json:"degraded"`
}

type DeferAllResponse struct {
	NothingToDefer bool               `json:"nothing_to_defer,omitempty"`
	TargetTime     string             `json:"target_time,omitempty"`
	GapSeconds     int64              `json:"gap_seconds,omitempty"`
	Reminders      []ReminderResponse `json:"reminders,omitempty"`
	DegradedIDs    []int32            `json:"degraded_ids,omitempty"`
}

type ReminderHandler struct {
	engine               *engine.Engine
	clock                clock.Clock
	defaultSnoozeMinutes int
}

func NewReminderHandler(e *engine.Engine, clk clock.Clock, defaultSnoozeMinutes int) *ReminderHandler {
	return &ReminderHandler{
		engine:               e,
		clock:                clk,
		defaultSnoozeMinutes: defaultSnoozeMinutes,
	}
}

func (h *ReminderHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/reminders", h.HandleList)
	g.POST("/reminders", h.HandleCreate)
	g.POST("/reminders/defer-all", h.HandleDeferAll)
	g.POST("/reminders/:id/snooze", h.HandleSnooze)
	g.DELETE("/reminders/:id", h.HandleDismiss)
	g.POST("/alarms/actions", h.HandleAlarmAction)
}

func (h *ReminderHandler) HandleList(c *gin.Context) {
	now := h.clock.Now()
	c.JSON(http.StatusOK, gin.H{
		"mode":      h.engine.Mode().String(),
		"reminders": toReminderResponses(h.engine.List(), now),
	})
}

func (h *ReminderHandler) HandleCreate(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	out, err := h.engine.Create(c.Request.Context(), req.Text, req.DurationMinutes)
	if err != nil {
		respondDomainError(c, "create", err)
		return
	}

	c.JSON(http.StatusCreated, OutcomeResponse{
		Reminder: toReminderResponse(out.Reminder, h.clock.Now()),
		Degraded: out.Degraded,
	})
}

func (h *ReminderHandler) HandleSnooze(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	var req SnoozeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	minutes := h.defaultSnoozeMinutes
	if req.Minutes != nil {
		minutes = *req.Minutes
	}

	out, err := h.engine.Snooze(c.Request.Context(), id, minutes)
	if err != nil {
		respondDomainError(c, "snooze", err)
		return
	}
	if out == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}

	c.JSON(http.StatusOK, OutcomeResponse{
		Reminder: toReminderResponse(out.Reminder, h.clock.Now()),
		Degraded: out.Degraded,
	})
}

func (h *ReminderHandler) HandleDismiss(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	if err := h.engine.Dismiss(c.Request.Context(), id); err != nil {
		respondDomainError(c, "dismiss", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) HandleDeferAll(c *gin.Context) {
	ctx := c.Request.Context()

	var req DeferAllRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	var (
		res engine.DeferResult
		err error
	)
	switch {
	case req.Hour == nil && req.Minute == nil:
		res, err = h.engine.DeferAllToConfigured(ctx)
	case req.Hour == nil || req.Minute == nil:
		respondError(c, http.StatusBadRequest, "invalid_input", "hour and minute must be given together")
		return
	default:
		res, err = h.engine.DeferAll(ctx, *req.Hour, *req.Minute)
	}

	if errors.Is(err, domain.ErrNothingToDefer) {
		c.JSON(http.StatusOK, DeferAllResponse{NothingToDefer: true})
		return
	}
	if err != nil {
		respondDomainError(c, "defer_all", err)
		return
	}

	c.JSON(http.StatusOK, DeferAllResponse{
		TargetTime:  res.Target.Format(time.RFC3339),
		GapSeconds:  res.GapSeconds,
		Reminders:   toReminderResponses(res.Reminders, h.clock.Now()),
		DegradedIDs: res.DegradedIDs,
	})
}

// HandleAlarmAction receives actions performed on a delivered alarm.
func (h *ReminderHandler) HandleAlarmAction(c *gin.Context) {
	var req AlarmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	slog.InfoContext(c.Request.Context(), "alarm action received",
		slog.Int("reminder_id", int(req.ReminderID)),
		slog.String("action_id", req.ActionID),
	)

	if err := h.engine.HandleAction(c.Request.Context(), req.ReminderID, req.ActionID); err != nil {
		respondDomainError(c, "alarm_action", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func reminderID(c *gin.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", "reminder id must be an integer")
		return 0, false
	}
	return int32(id), true
}

// bindOptionalJSON leaves v untouched when the body is empty.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
