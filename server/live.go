package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hasibdev/portfeed/store"
	Logger "github.com/hasibdev/portfeed/utils/log"
)

var upgrader = websocket.Upgrader{
	// The feed is public and single-user; cross-origin pages may open the
	// live socket.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// live upgrades the connection to a websocket and forwards one
// {"event": "changed"} frame per change notification on the event bus, for
// the life of the connection. Clients re-fetch the list on every frame; the
// frames carry no diff, so a frame lost to a reconnect only delays the next
// re-render.
func (h *Handlers) live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		Logger.Log.Warn("cannot upgrade live connection: ", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	messages, err := h.bus.Subscribe(ctx, store.TopicPostsChanged)
	if err != nil {
		Logger.Log.Warn("cannot subscribe live connection to change topic: ", err)
		return
	}

	// Drain client frames so closes and pings are noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range messages {
		msg.Ack()
		if err := conn.WriteJSON(gin.H{"event": "changed"}); err != nil {
			return
		}
	}
}
