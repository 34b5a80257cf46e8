package api

import (
	"fmt"

	"token-auth/internal/api/handlers"
	"token-auth/internal/api/interfaces"
	"token-auth/internal/api/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes with proper middleware
func SetupRoutes(router *gin.Engine, services interfaces.Services) {
	cfg := services.GetConfig()
	log := services.GetLogger()

	// Global middleware; RequestLogging stays outside Recovery to record recovered 500s
	router.Use(middlewares.RequestLogging(log))
	router.Use(middlewares.Recovery(log))
	router.Use(middlewares.Security())
	router.Use(middlewares.CORS(cfg.API.CORS))
	router.Use(middlewares.TokenGate(services.AuthService(), cfg.Security.PublicPathPrefix, log))

	router.NoRoute(handlers.NotFound())

	// Health check
	router.GET("/health", handlers.HealthCheck(services))
	router.GET("/hello", handlers.Hello(services))

	setupAuthRoutes(router.Group(cfg.Security.PublicPathPrefix), services)
	setupAuthenticatedRoutes(router.Group("/api"), services)
}

// setupAuthRoutes configures the login surface skipped by the token gate
func setupAuthRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	rg.POST("/login", handlers.Login(services))
}

// setupAuthenticatedRoutes configures routes that require an identity
func setupAuthenticatedRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	authenticated := rg.Group("/")
	authenticated.Use(middlewares.RequireIdentity())
	{
		authenticated.GET("/me", handlers.Me(services))
	}
}

// NewRouter builds a gin engine with all routes registered.
// Only the configured proxies may supply the client IP via forwarding headers.
func NewRouter(services interfaces.Services) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(services.GetConfig().Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	SetupRoutes(router, services)
	return router, nil
}
