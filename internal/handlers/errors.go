package handlers

import (
	"net/http"

	"trading-contests/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses: validation 400,
// not-found 404, conflict 409, external dependency 502, exhausted
// transaction retries 503, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsTransactionAbort(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily overloaded, retry the request"})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.IsExternalDependency(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
