package handler

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"jtimer/backend/internal/middleware"
	"jtimer/backend/internal/model"
	"jtimer/backend/internal/service"
)

const (
	eventsWriteTimeout = 5 * time.Second
	eventsPingInterval = 30 * time.Second
)

// EventsHandler streams session snapshots over a websocket, one JSON message
// per change, starting with the current snapshot.
type EventsHandler struct {
	controller *service.SessionController
	upgrader   websocket.Upgrader
}

func NewEventsHandler(controller *service.SessionController, origins middleware.OriginPolicy) *EventsHandler {
	return &EventsHandler{
		controller: controller,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.CheckOrigin,
		},
	}
}

func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates, cancel := h.controller.Subscribe()
	defer cancel()

	// the client never sends anything meaningful; reading detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, h.controller.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(eventsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(eventsWriteTimeout))
				return
			}
			if err := h.write(conn, snap); err != nil {
				log.Printf("events: write: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) write(conn *websocket.Conn, snap model.Snapshot) error {
	if err := conn.SetWriteDeadline(time.Now().Add(eventsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(snap)
}
