package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jtimer/backend/internal/handler"
	"jtimer/backend/internal/middleware"
	"jtimer/backend/internal/spotify"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Session  *handler.SessionHandler
	Tasks    *handler.TaskHandler
	Playback *handler.PlaybackHandler
	Events   *handler.EventsHandler
}

func New(tokens spotify.TokenSource, h Handlers, origins middleware.OriginPolicy) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(origins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := engine.Group("/auth")
	auth.GET("/login", h.Auth.Login)
	auth.GET("/callback", h.Auth.Callback)
	auth.GET("/token", h.Auth.Token)

	api := engine.Group("/api")
	api.GET("/events", h.Events.Stream)

	session := api.Group("/session")
	session.GET("", h.Session.GetState)
	session.POST("/start", h.Session.Start)
	session.POST("/pause", h.Session.Pause)
	session.POST("/toggle", h.Session.Toggle)
	session.POST("/reset", h.Session.Reset)
	session.POST("/mode", h.Session.SwitchMode)
	session.PUT("/settings", h.Session.UpdateSettings)
	session.POST("/settings/reset", h.Session.ResetSettings)
	session.POST("/mute", h.Session.Mute)
	session.POST("/alarm/stop", h.Session.StopAlarm)
	session.POST("/playback/resume", h.Session.ResumePlayback)

	tasks := api.Group("/tasks")
	tasks.GET("", h.Tasks.List)
	tasks.POST("", h.Tasks.Add)
	tasks.POST("/:id/toggle", h.Tasks.Toggle)
	tasks.DELETE("/:id", h.Tasks.Delete)

	playback := api.Group("/playback")
	playback.Use(middleware.RequireCredential(tokens))
	playback.GET("", h.Playback.GetState)
	playback.GET("/devices", h.Playback.Devices)
	playback.POST("/play", h.Playback.Play)
	playback.POST("/pause", h.Playback.Pause)
	playback.POST("/toggle", h.Playback.Toggle)
	playback.POST("/next", h.Playback.Next)
	playback.POST("/previous", h.Playback.Previous)
	playback.PUT("/device", h.Playback.Transfer)

	return engine
}
