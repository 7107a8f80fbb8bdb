package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/entities"
	"lab-server/usecases"
)

type InstallableAppHandler struct {
	useCase *usecases.InstallableAppsUseCase
}

func NewInstallableAppHandler(uc *usecases.InstallableAppsUseCase) *InstallableAppHandler {
	return &InstallableAppHandler{useCase: uc}
}

// GET /api/v1/installable-apps
func (h *InstallableAppHandler) List(c *gin.Context) {
	apps, err := h.useCase.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": apps, "count": len(apps)})
}

// POST /api/v1/installable-apps
func (h *InstallableAppHandler) Add(c *gin.Context) {
	var app entities.InstallableApp
	if err := c.ShouldBindJSON(&app); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	app.ID = 0
	if err := h.useCase.Add(c.Request.Context(), &app); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": app})
}

// DELETE /api/v1/installable-apps/:id
func (h *InstallableAppHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.useCase.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "App deleted"})
}
