package handler

import (
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every failed request. The error text is
// always one of the fixed messages in errors.go.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse[T any] struct {
	Success bool `json:"success"`
	Result  T    `json:"result"`
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: msg})
}

func ok[T any](c *gin.Context, status int, result T) {
	c.JSON(status, successResponse[T]{Success: true, Result: result})
}
