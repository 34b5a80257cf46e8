package handlers

import (
	"net/http"
	"strings"

	"token-auth/internal/api/interfaces"
	"token-auth/internal/api/models"
	"token-auth/internal/auth"
	"token-auth/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Login issues a token for any non-blank username.
// There is no user store; the role is copied into the roles claim as given
// and the claim is left out when the request has no role.
func Login(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLoggerFromContext(c)

		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warning("Invalid login request: %v", err)
			c.Status(http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Username) == "" {
			c.Status(http.StatusBadRequest)
			return
		}

		claims := map[string]any{}
		if req.Role != nil {
			claims[auth.ClaimRoles] = *req.Role
		}

		token, err := services.AuthService().Issue(req.Username, claims)
		if err != nil {
			log.StructuredError(err, map[string]interface{}{"user_id": req.Username})
			apiErr := models.NewAPIError(models.ErrCodeTokenIssue, "Failed to issue token", http.StatusInternalServerError)
			c.JSON(apiErr.StatusCode, models.NewErrorResponse(apiErr, c.GetString("request_id")))
			return
		}

		log.Info("Token issued", "user_id", req.Username)
		c.JSON(http.StatusOK, models.LoginResponse{Token: token})
	}
}
