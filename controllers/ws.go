package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fixit-api/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamReports pushes live report changes to the admin dashboard over
// a websocket. The change-stream subscription is torn down when the
// client goes away.
func StreamReports(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel, err := services.WatchReports(c.Request.Context(), logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open report stream")
		conn.WriteJSON(gin.H{"error": "stream unavailable"})
		return
	}
	defer cancel()

	// Reads only serve to detect the client closing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}
