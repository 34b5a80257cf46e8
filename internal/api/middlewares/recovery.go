package middlewares

import (
	"fmt"
	"io"

	"token-auth/internal/api/models"
	"token-auth/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery middleware recovers from panics and answers with a 500 envelope
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		log.StructuredError(fmt.Errorf("panic: %v", recovered), map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		})

		apiErr := models.ErrInternal("Internal server error")
		c.AbortWithStatusJSON(apiErr.StatusCode, models.NewErrorResponse(apiErr, c.GetString("request_id")))
	})
}
