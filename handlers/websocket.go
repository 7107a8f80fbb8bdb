package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lab-server/logger"
	"lab-server/usecases"
	"lab-server/ws"
)

// StatusWSHandler serves the live computer status feed.
type StatusWSHandler struct {
	hub       *ws.Hub
	dashboard *usecases.DashboardUseCase
}

func NewStatusWSHandler(hub *ws.Hub, dashboard *usecases.DashboardUseCase) *StatusWSHandler {
	return &StatusWSHandler{hub: hub, dashboard: dashboard}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleStatusWS upgrades to websocket, replays the current status of every
// known computer, then streams updates as heartbeats arrive. The snapshot is
// read before joining the hub so no live update can be overtaken by it.
// GET /ws/status
func (h *StatusWSHandler) HandleStatusWS(c *gin.Context) {
	snapshot, err := h.dashboard.ComputerStatuses(c.Request.Context())
	if err != nil {
		logger.Warn().Err(err).Msg("status snapshot unavailable")
	}
	initial := make([][]byte, 0, len(snapshot))
	for _, status := range snapshot {
		payload, err := json.Marshal(status)
		if err != nil {
			continue
		}
		initial = append(initial, payload)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	id := h.hub.Register(conn, initial...)
	h.hub.ReadPump(id, conn)
}

// ScreensWSHandler serves agent screen frames during exam monitoring.
type ScreensWSHandler struct {
	hub *ws.Hub
}

func NewScreensWSHandler(hub *ws.Hub) *ScreensWSHandler {
	return &ScreensWSHandler{hub: hub}
}

// GET /ws/screens
func (h *ScreensWSHandler) HandleScreensWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	id := h.hub.Register(conn)
	h.hub.ReadPump(id, conn)
}
