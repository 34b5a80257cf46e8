package middlewares

import (
	"strings"

	"token-auth/internal/api/interfaces"
	"token-auth/internal/api/models"
	"token-auth/internal/auth"
	"token-auth/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	bearerPrefix = "Bearer "

	contextKeyUserID   = "user_id"
	contextKeyIdentity = "identity"
)

// TokenGate validates bearer tokens and attaches the caller's identity to
// the request context. It never rejects a request: a missing, expired or
// forged token only means no identity is attached. Enforcement belongs to
// RequireIdentity or the handler.
//
// Requests whose path starts with publicPrefix are passed through without
// looking at the Authorization header.
func TokenGate(validator interfaces.TokenValidator, publicPrefix string, log *logger.Logger) gin.HandlerFunc {
	gateLog := log.WithComponent("token_gate")

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, publicPrefix) {
			c.Next()
			return
		}

		token, ok := extractToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := validator.Validate(token)
		switch {
		case err != nil:
			gateLog.SecurityLogger("token_rejected", "", auth.Kind(err))
			gateLog.Debug("JWT validation failed: %v", err)
		case claims.Subject == "":
			gateLog.SecurityLogger("token_rejected", "", "missing subject")
		default:
			attachIdentity(c, claims.Subject, gateLog)
		}

		c.Next()
	}
}

// attachIdentity stores an identity for subject unless one is already set.
// Token roles are deliberately not turned into authorities.
func attachIdentity(c *gin.Context, subject string, log *logger.Logger) {
	if _, exists := auth.IdentityFromContext(c.Request.Context()); exists {
		return
	}

	identity := auth.NewIdentity(subject)
	identity.ClientIP = c.ClientIP()
	identity.RequestID = c.GetString("request_id")

	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
	c.Set(contextKeyIdentity, identity)
	c.Set(contextKeyUserID, subject)

	log.Info("JWT validated and identity attached", "user_id", subject)
}

// RequireIdentity rejects requests that reach it without an identity
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			c.AbortWithStatusJSON(models.ErrUnauthorized().StatusCode,
				models.NewErrorResponse(models.ErrUnauthorized(), c.GetString("request_id")))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity attached by TokenGate
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	return auth.IdentityFromContext(c.Request.Context())
}

// GetUserID returns the authenticated username, or "" when anonymous
func GetUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// extractToken extracts the JWT from an Authorization: Bearer header
func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	return strings.CutPrefix(authHeader, bearerPrefix)
}
