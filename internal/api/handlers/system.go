package handlers

import (
	"net/http"
	"time"

	"token-auth/internal/api/interfaces"
	"token-auth/internal/api/models"

	"github.com/gin-gonic/gin"
)

const (
	version  = "1.0.0"
	greeting = "Welcome to token-auth"
)

var startTime = time.Now()

// HealthCheck provides a simple health check endpoint
func HealthCheck(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthCheckResponse{
			Status:    "healthy",
			Timestamp: time.Now().Unix(),
			Version:   version,
			Uptime:    int64(time.Since(startTime).Seconds()),
		})
	}
}

// NotFound answers unknown routes with the error envelope
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiErr := models.ErrNotFound().WithDetails(c.Request.URL.Path)
		c.JSON(apiErr.StatusCode, models.NewErrorResponse(apiErr, c.GetString("request_id")))
	}
}

// Hello returns a fixed greeting
func Hello(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, greeting)
	}
}
