package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/usecases"
)

type ControlHandler struct {
	useCase *usecases.ExamControlUseCase
}

func NewControlHandler(uc *usecases.ExamControlUseCase) *ControlHandler {
	return &ControlHandler{useCase: uc}
}

// POST /api/v1/control/:action
func (h *ControlHandler) Send(c *gin.Context) {
	action, err := h.useCase.Send(c.Request.Context(), c.Param("action"), issuer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Order sent: " + action, "action": action})
}
