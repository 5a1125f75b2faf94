package notify

import (
	"encoding/json"
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// SnapshotFunc resolves a session id to its current snapshot. The session
// store's Status method satisfies it.
type SnapshotFunc func(id string) (model.Session, error)

// StreamHandler returns a gin handler that upgrades the connection to a
// websocket, immediately sends the current session snapshot, then streams
// the hub's events for that session until the client disconnects.
func StreamHandler(hub *Hub, snapshot SnapshotFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")

		snap, err := snapshot(sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := ws.Accept(c.Writer, c.Request, &ws.AcceptOptions{
			InsecureSkipVerify: true, // same-host frontend, no origin allowlist
		})
		if err != nil {
			logger.Warn("websocket accept", zap.String("session", sessionID), zap.Error(err))
			return
		}

		client := NewClient(hub, sessionID, conn)

		// Deliver the snapshot before any live frame so the client starts
		// from authoritative state.
		first, err := json.Marshal(Event{Type: EventSnapshot, Session: snap})
		if err == nil {
			client.send <- first
		}

		client.Run(c.Request.Context())
	}
}
