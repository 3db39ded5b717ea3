package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Handler upgrades the request to a websocket connection and registers it
// with the hub. allowedOrigin restricts browser connections; an empty value
// accepts any origin.
func Handler(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedOrigin == "" || origin == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade websocket connection")
			return
		}

		client := newClient(hub, conn)
		hub.Add(client)
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client connected")

		go client.writePump()
		go client.readPump()
	}
}
