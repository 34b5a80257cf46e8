package api

import (
	"fmt"

	"token-auth/internal/api/interfaces"
	"token-auth/internal/auth"
	"token-auth/pkg/config"
	"token-auth/pkg/logger"
)

// Services contains all the dependencies for API handlers
type Services struct {
	Logger *logger.Logger
	Config *config.Config

	authService interfaces.AuthServiceInterface
}

// NewServices creates a new services container.
// The signing keys are read from config once and never change afterwards.
func NewServices(cfg *config.Config, log *logger.Logger) (*Services, error) {
	keys, err := auth.NewKeySet(
		cfg.Security.JWTKeyID,
		[]byte(cfg.Security.JWTSecret),
		cfg.Security.VerificationKeyBytes(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build signing keys: %w", err)
	}

	tokens := auth.NewTokenService(keys, auth.WithTTL(cfg.Security.JWTExpiration))

	log.WithComponent("auth").Info("Token service initialized",
		"active_kid", keys.ActiveID(),
		"kids", keys.IDs(),
		"ttl", tokens.TTL().String(),
	)

	return NewServicesWith(cfg, log, tokens), nil
}

// NewServicesWith wires an existing token service, mainly for tests
func NewServicesWith(cfg *config.Config, log *logger.Logger, tokens interfaces.AuthServiceInterface) *Services {
	return &Services{
		Logger:      log,
		Config:      cfg,
		authService: tokens,
	}
}

// GetLogger returns the application logger
func (s *Services) GetLogger() *logger.Logger {
	return s.Logger
}

// GetConfig returns the loaded configuration
func (s *Services) GetConfig() *config.Config {
	return s.Config
}

// AuthService returns the token service
func (s *Services) AuthService() interfaces.AuthServiceInterface {
	return s.authService
}
