package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drithh/setalip-mono-sub003/internal/logger"
)

// Response wraps every successful payload as {"result": ...}.
type Response struct {
	Result interface{} `json:"result"`
}

type ErrorBody struct {
	Message string            `json:"message" example:"something went wrong"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps every failure as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

func OK(c *gin.Context, status int, result interface{}) {
	c.JSON(status, Response{Result: result})
}

func Message(c *gin.Context, message string) {
	OK(c, http.StatusOK, MessageResponse{Message: message})
}

func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Message: message}})
}

func FailFields(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Message: message, Fields: fields}})
}

// Internal logs err and responds with a generic 500 so internals never leak.
func Internal(c *gin.Context, err error) {
	logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	Fail(c, http.StatusInternalServerError, "internal server error")
}
