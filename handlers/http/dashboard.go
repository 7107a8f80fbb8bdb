package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/usecases"
)

type DashboardHandler struct {
	useCase *usecases.DashboardUseCase
}

func NewDashboardHandler(uc *usecases.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{useCase: uc}
}

// GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.useCase.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GET /api/v1/computers/status
func (h *DashboardHandler) ComputerStatuses(c *gin.Context) {
	all, err := h.useCase.ComputerStatuses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": all, "count": len(all)})
}

// GET /api/v1/computers/status/:ip
func (h *DashboardHandler) ComputerStatus(c *gin.Context) {
	status, err := h.useCase.ComputerStatus(c.Request.Context(), c.Param("ip"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": status})
}
