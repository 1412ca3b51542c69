package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/service"
)

const stateCookieName = "jtimer_oauth_state"

// AuthHandler serves the authorization-code redirect flow. bridge is nil when
// no client credentials are configured.
type AuthHandler struct {
	bridge *service.TokenBridge
}

func NewAuthHandler(bridge *service.TokenBridge) *AuthHandler {
	return &AuthHandler{bridge: bridge}
}

func (h *AuthHandler) Login(c *gin.Context) {
	if h.bridge == nil {
		writeNotConfigured(c)
		return
	}

	authURL, state := h.bridge.BeginAuthorization()
	signed, err := h.bridge.SignState(state)
	if err != nil {
		log.Printf("auth login: %v", err)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookieName, signed, 300, "/auth", "", false, true)
	}
	c.Redirect(http.StatusFound, authURL)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	if h.bridge == nil {
		writeNotConfigured(c)
		return
	}

	if signed, err := c.Cookie(stateCookieName); err == nil {
		c.SetCookie(stateCookieName, "", -1, "/auth", "", false, true)
		if err := h.bridge.VerifyState(signed, c.Query("state")); err != nil {
			log.Printf("auth callback: %v", err)
			c.Redirect(http.StatusFound, h.bridge.FailureRedirect())
			return
		}
	}

	if err := h.bridge.CompleteAuthorization(c.Request.Context(), c.Query("code")); err != nil {
		if !errors.Is(err, service.ErrAuthorizationExchange) {
			log.Printf("auth callback: unexpected error: %v", err)
		}
		c.Redirect(http.StatusFound, h.bridge.FailureRedirect())
		return
	}
	c.Redirect(http.StatusFound, h.bridge.SuccessRedirect())
}

// Token hands the current credential to the client, empty when there is none.
func (h *AuthHandler) Token(c *gin.Context) {
	token, _ := h.bridge.CurrentToken()
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func writeNotConfigured(c *gin.Context) {
	writeError(c, apperrors.Unavailable("auth_not_configured", "playback service credentials are not configured"))
}
