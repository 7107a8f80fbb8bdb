package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-server/usecases"
)

type BlockedWebsiteHandler struct {
	useCase *usecases.BlockedWebsitesUseCase
}

func NewBlockedWebsiteHandler(uc *usecases.BlockedWebsitesUseCase) *BlockedWebsiteHandler {
	return &BlockedWebsiteHandler{useCase: uc}
}

// GET /api/v1/blocked-websites
func (h *BlockedWebsiteHandler) List(c *gin.Context) {
	sites, err := h.useCase.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sites, "count": len(sites)})
}

// GET /api/v1/blocked-websites/count
func (h *BlockedWebsiteHandler) Count(c *gin.Context) {
	n, err := h.useCase.Count(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

type addWebsiteReq struct {
	Name string `json:"name"`
	URL  string `json:"url" binding:"required"`
}

// POST /api/v1/blocked-websites
func (h *BlockedWebsiteHandler) Add(c *gin.Context) {
	var req addWebsiteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	site, report, err := h.useCase.Add(c.Request.Context(), req.Name, req.URL, issuer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": site, "broadcast": report})
}

// DELETE /api/v1/blocked-websites/:id
func (h *BlockedWebsiteHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	report, err := h.useCase.Remove(c.Request.Context(), id, issuer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Website unblocked", "broadcast": report})
}
