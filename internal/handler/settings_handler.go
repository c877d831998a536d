package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/service/permission"
	"github.com/KasumiMercury/primind-countdown/internal/service/store"
)

type DeferToBody struct {
	DeferTo string `json:"defer_to"`
}

type OnboardingBody struct {
	Complete bool `json:"complete"`
}

type PermissionBody struct {
	Status domain.PermissionStatus `json:"status"`
}

type SettingsHandler struct {
	settings *store.SettingsStore
	gate     *permission.Gate
}

func NewSettingsHandler(settings *store.SettingsStore, gate *permission.Gate) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		gate:     gate,
	}
}

func (h *SettingsHandler) RegisterRoutes(g *gin.RouterGroup) {
	s := g.Group("/settings")
	s.GET("/defer-to", h.HandleGetDeferTo)
	s.PUT("/defer-to", h.HandlePutDeferTo)
	s.GET("/onboarding", h.HandleGetOnboarding)
	s.PUT("/onboarding", h.HandlePutOnboarding)
	s.GET("/permission", h.HandleGetPermission)
	s.PUT("/permission", h.HandlePutPermission)
	s.POST("/permission/request", h.HandleRequestPermission)
}

func (h *SettingsHandler) HandleGetDeferTo(c *gin.Context) {
	ct, err := h.settings.DeferTo(c.Request.Context())
	if err != nil {
		respondDomainError(c, "get_defer_to", err)
		return
	}
	c.JSON(http.StatusOK, DeferToBody{DeferTo: ct.String()})
}

func (h *SettingsHandler) HandlePutDeferTo(c *gin.Context) {
	var body DeferToBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	ct, err := domain.ParseClockTime(body.DeferTo)
	if err != nil {
		respondDomainError(c, "set_defer_to", err)
		return
	}
	if err := h.settings.SetDeferTo(c.Request.Context(), ct); err != nil {
		respondDomainError(c, "set_defer_to", err)
		return
	}

	c.JSON(http.StatusOK, DeferToBody{DeferTo: ct.String()})
}

func (h *SettingsHandler) HandleGetOnboarding(c *gin.Context) {
	done, err := h.settings.OnboardingComplete(c.Request.Context())
	if err != nil {
		respondDomainError(c, "get_onboarding", err)
		return
	}
	c.JSON(http.StatusOK, OnboardingBody{Complete: done})
}

func (h *SettingsHandler) HandlePutOnboarding(c *gin.Context) {
	var body OnboardingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if err := h.settings.SetOnboardingComplete(c.Request.Context(), body.Complete); err != nil {
		respondDomainError(c, "set_onboarding", err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *SettingsHandler) HandleGetPermission(c *gin.Context) {
	status, err := h.gate.Status(c.Request.Context())
	if err != nil {
		respondDomainError(c, "get_permission", err)
		return
	}
	c.JSON(http.StatusOK, PermissionBody{Status: status})
}

// HandlePutPermission is the settings launcher: the user changed the
// decision outside the normal request flow.
func (h *SettingsHandler) HandlePutPermission(c *gin.Context) {
	var body PermissionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if err := h.gate.Update(c.Request.Context(), body.Status); err != nil {
		respondDomainError(c, "set_permission", err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *SettingsHandler) HandleRequestPermission(c *gin.Context) {
	status, err := h.gate.Request(c.Request.Context())
	if err != nil {
		respondDomainError(c, "request_permission", err)
		return
	}
	c.JSON(http.StatusOK, PermissionBody{Status: status})
}
