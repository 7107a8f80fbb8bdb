package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/usecases"
)

type RoomHandler struct {
	directory *usecases.DirectoryUseCase
	apps      *usecases.InstallableAppsUseCase
}

func NewRoomHandler(directory *usecases.DirectoryUseCase, apps *usecases.InstallableAppsUseCase) *RoomHandler {
	return &RoomHandler{directory: directory, apps: apps}
}

// GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms := h.directory.Rooms()
	c.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
}

// GET /api/v1/rooms/:room/pcs
func (h *RoomHandler) ListPcs(c *gin.Context) {
	room, ok := intParam(c, "room")
	if !ok {
		return
	}
	pcs, err := h.directory.ListRoom(c.Request.Context(), room)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pcs, "count": len(pcs)})
}

// GET /api/v1/directory/cache
func (h *RoomHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.directory.CacheStats()})
}

type installReq struct {
	AppName string `json:"appName" binding:"required"`
}

// POST /api/v1/rooms/:room/pcs/:pcId/install
func (h *RoomHandler) InstallApp(c *gin.Context) {
	room, ok := intParam(c, "room")
	if !ok {
		return
	}
	pcID, ok := uintParam(c, "pcId")
	if !ok {
		return
	}
	var req installReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	cmd, err := h.apps.Install(c.Request.Context(), room, pcID, req.AppName, issuer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": cmd})
}
