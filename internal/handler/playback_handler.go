package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/spotify"
)

type PlaybackHandler struct {
	player *spotify.Player
}

type transferRequest struct {
	DeviceID string `json:"deviceId"`
}

func NewPlaybackHandler(player *spotify.Player) *PlaybackHandler {
	return &PlaybackHandler{player: player}
}

func (h *PlaybackHandler) GetState(c *gin.Context) {
	playback, err := h.player.CurrentlyPlaying(c.Request.Context())
	if err != nil {
		writeError(c, playbackError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"playback": playback})
}

func (h *PlaybackHandler) Devices(c *gin.Context) {
	devices, err := h.player.ListDevices(c.Request.Context())
	if err != nil {
		writeError(c, playbackError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *PlaybackHandler) Play(c *gin.Context) {
	h.command(c, h.player.Resume)
}

func (h *PlaybackHandler) Pause(c *gin.Context) {
	h.command(c, h.player.Pause)
}

func (h *PlaybackHandler) Toggle(c *gin.Context) {
	h.command(c, h.player.Toggle)
}

func (h *PlaybackHandler) Next(c *gin.Context) {
	h.command(c, h.player.SkipNext)
}

func (h *PlaybackHandler) Previous(c *gin.Context) {
	h.command(c, h.player.SkipPrevious)
}

func (h *PlaybackHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		writeError(c, apperrors.BadRequest("invalid_device", "deviceId is required"))
		return
	}

	h.command(c, func(ctx context.Context) error {
		return h.player.TransferTo(ctx, deviceID)
	})
}

// command runs a playback call and answers with the cached view it left.
func (h *PlaybackHandler) command(c *gin.Context, call func(context.Context) error) {
	if err := call(c.Request.Context()); err != nil {
		writeError(c, playbackError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"playback": h.player.State()})
}

func playbackError(err error) *apperrors.APIError {
	if errors.Is(err, spotify.ErrUnauthenticated) {
		return apperrors.Unauthenticated("")
	}
	var statusErr *spotify.StatusError
	if errors.As(err, &statusErr) {
		return apperrors.PlaybackFailed(statusErr.Error(), gin.H{"status": statusErr.Status})
	}
	return apperrors.PlaybackFailed(err.Error(), nil)
}
