package httpHandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lab-server/logger"
	"lab-server/usecases"
)

const issuerKey = "issuer"

// Issuer copies the caller identity set by the upstream auth layer into the
// request context. Requests without it are dispatched anonymously.
func Issuer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(issuerKey, c.GetHeader("X-User-Email"))
		c.Next()
	}
}

func issuer(c *gin.Context) string {
	return c.GetString(issuerKey)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecases.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, usecases.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecases.ErrDuplicate), errors.Is(err, usecases.ErrStaleTransition):
		status = http.StatusConflict
	case errors.Is(err, usecases.ErrBrokerUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
