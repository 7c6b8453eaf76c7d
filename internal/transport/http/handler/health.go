package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health answers GET / for load balancers.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
