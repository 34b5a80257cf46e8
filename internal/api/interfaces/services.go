package interfaces

import (
	"token-auth/pkg/config"
	"token-auth/pkg/logger"
)

// Services defines the interface for API services
type Services interface {
	GetLogger() *logger.Logger
	GetConfig() *config.Config
	AuthService() AuthServiceInterface
}
