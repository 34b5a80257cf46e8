package handlers

import (
	"net/http"

	"token-auth/internal/api/interfaces"
	"token-auth/internal/api/middlewares"
	"token-auth/internal/api/models"

	"github.com/gin-gonic/gin"
)

// Me describes the caller identity attached by the token gate
func Me(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middlewares.GetIdentity(c)
		if !ok {
			apiErr := models.ErrUnauthorized()
			c.JSON(apiErr.StatusCode, models.NewErrorResponse(apiErr, c.GetString("request_id")))
			return
		}

		c.JSON(http.StatusOK, models.IdentityResponse{
			Username:    identity.Username,
			Authorities: identity.Authorities,
			ClientIP:    identity.ClientIP,
			RequestID:   identity.RequestID,
		})
	}
}
