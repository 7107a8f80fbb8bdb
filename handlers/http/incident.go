package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/usecases"
)

type IncidentHandler struct {
	useCase *usecases.IncidentsUseCase
}

func NewIncidentHandler(uc *usecases.IncidentsUseCase) *IncidentHandler {
	return &IncidentHandler{useCase: uc}
}

type reportIncidentReq struct {
	Description string `json:"description" binding:"required"`
	Severity    string `json:"severity" binding:"required"`
}

// POST /api/v1/incidents
func (h *IncidentHandler) Report(c *gin.Context) {
	var req reportIncidentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	incident, err := h.useCase.Report(c.Request.Context(), req.Description, req.Severity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": incident})
}

// GET /api/v1/incidents?status=PENDING
func (h *IncidentHandler) List(c *gin.Context) {
	incidents, err := h.useCase.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": incidents, "count": len(incidents)})
}

// PATCH /api/v1/incidents/:id/complete
func (h *IncidentHandler) Complete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	incident, err := h.useCase.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": incident})
}
