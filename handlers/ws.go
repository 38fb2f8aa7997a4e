package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive so cloud proxies do not drop idle sockets.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		ledgerID, _ := s.Get("ledger_id")
		log.Printf("✅ Client connected to ledger: %v", ledgerID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		ledgerID, _ := s.Get("ledger_id")
		log.Printf("🔌 Client disconnected from ledger: %v", ledgerID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and pins the session to its ledger.
func (h *WSHandler) HandleWS(c *gin.Context) {
	ledgerID := c.Param("id")

	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"ledger_id": ledgerID,
	})
	if err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate signals every client watching the ledger.
func (h *WSHandler) BroadcastUpdate(ledgerID string, updateType string, userWhoUpdated string) {
	msg := []byte(`{"type": "` + updateType + `", "user": "` + userWhoUpdated + `"}`)

	err := h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("ledger_id")
		return exists && id == ledgerID
	})

	if err != nil {
		log.Printf("⚠️ Error broadcasting to ledger %s: %v", ledgerID, err)
	}
}
