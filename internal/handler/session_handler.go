package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/model"
	"jtimer/backend/internal/service"
)

type SessionHandler struct {
	controller *service.SessionController
}

type switchModeRequest struct {
	Mode string `json:"mode"`
}

type updateSettingsRequest struct {
	WorkMinutes       *int `json:"workMinutes"`
	ShortBreakMinutes *int `json:"shortBreakMinutes"`
	LongBreakMinutes  *int `json:"longBreakMinutes"`
}

type muteRequest struct {
	Muted *bool `json:"muted"`
}

func NewSessionHandler(controller *service.SessionController) *SessionHandler {
	return &SessionHandler{controller: controller}
}

func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.controller.Snapshot()})
}

func (h *SessionHandler) Start(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.controller.Start()})
}

func (h *SessionHandler) Pause(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.controller.Pause()})
}

func (h *SessionHandler) Toggle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.controller.Toggle()})
}

func (h *SessionHandler) Reset(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.controller.ResetTimer()})
}

func (h *SessionHandler) SwitchMode(c *gin.Context) {
	var req switchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	state, err := h.controller.SwitchMode(model.Mode(req.Mode))
	if errors.Is(err, service.ErrInvalidMode) {
		writeError(c, apperrors.BadRequest("invalid_mode", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	state, err := h.controller.UpdateSettings(c.Request.Context(), service.SettingsUpdate{
		WorkMinutes:       req.WorkMinutes,
		ShortBreakMinutes: req.ShortBreakMinutes,
		LongBreakMinutes:  req.LongBreakMinutes,
	})
	if err != nil {
		log.Printf("update settings: %v", err)
		writeError(c, apperrors.Internal("failed to save settings"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) ResetSettings(c *gin.Context) {
	state, err := h.controller.ResetSettings(c.Request.Context())
	if err != nil {
		log.Printf("reset settings: %v", err)
		writeError(c, apperrors.Internal("failed to reset settings"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Mute sets the mute flag, or flips it when the body names no value.
func (h *SessionHandler) Mute(c *gin.Context) {
	var req muteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	var (
		state model.Snapshot
		err   error
	)
	if req.Muted == nil {
		state, err = h.controller.ToggleMute(c.Request.Context())
	} else {
		state, err = h.controller.SetMuted(c.Request.Context(), *req.Muted)
	}
	if err != nil {
		log.Printf("mute: %v", err)
		writeError(c, apperrors.Internal("failed to save mute setting"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *SessionHandler) StopAlarm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.controller.StopAlarm()})
}

func (h *SessionHandler) ResumePlayback(c *gin.Context) {
	resumed := h.controller.ResumePlayback(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"resumed": resumed})
}
