package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/usecases"
)

type CommandHandler struct {
	cmdUC *usecases.CommandsUseCase
}

func NewCommandHandler(uc *usecases.CommandsUseCase) *CommandHandler {
	return &CommandHandler{cmdUC: uc}
}

type createCommandReq struct {
	RoomNumber *int   `json:"roomNumber"`
	SalaNumber *int   `json:"salaNumber"` // older dashboards
	PcID       uint   `json:"pcId"`
	Action     string `json:"action"`
	Parameters string `json:"parameters"`
}

// POST /api/v1/commands
func (h *CommandHandler) Create(c *gin.Context) {
	var req createCommandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	room := 0
	switch {
	case req.RoomNumber != nil:
		room = *req.RoomNumber
	case req.SalaNumber != nil:
		room = *req.SalaNumber
	}

	cmd, err := h.cmdUC.Submit(c.Request.Context(), usecases.CommandRequest{
		RoomNumber: room,
		PcID:       req.PcID,
		Action:     req.Action,
		Parameters: req.Parameters,
	}, issuer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": cmd})
}

// GET /api/v1/commands?computerName=...&status=...
func (h *CommandHandler) List(c *gin.Context) {
	cmds, err := h.cmdUC.List(c.Request.Context(), c.Query("computerName"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cmds, "count": len(cmds)})
}

// GET /api/v1/commands/:id
func (h *CommandHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	cmd, err := h.cmdUC.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cmd})
}

type updateStatusReq struct {
	Status        string `json:"status" binding:"required"`
	ResultMessage string `json:"resultMessage"`
}

// PUT /api/v1/commands/:id/status
// Agents that cannot reach the broker report results here.
func (h *CommandHandler) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	cmd, err := h.cmdUC.UpdateStatus(c.Request.Context(), id, req.Status, req.ResultMessage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cmd})
}
