package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every automatically bound environment variable
const EnvPrefix = "TOKENAUTH"

// minSecretLength mirrors auth.MinKeyLength (256 bits)
const minSecretLength = 32

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Security SecurityConfig `mapstructure:"security"`
	API      APIConfig      `mapstructure:"api"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies lists IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the client IP is always the socket peer.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig holds token signing configuration
type SecurityConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTKeyID      string        `mapstructure:"jwt_key_id"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	// VerificationKeys are accepted for validation only, keyed by kid.
	// Viper lowercases map keys, so kids should be lowercase.
	VerificationKeys map[string]string `mapstructure:"verification_keys"`
	// PublicPathPrefix is skipped by the request gate
	PublicPathPrefix string `mapstructure:"public_path_prefix"`
}

// APIConfig holds API-related configuration
type APIConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty or missing configPath falls back to defaults and the environment.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "Warning: Config file not found at %s, using defaults\n", configPath)
			} else {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.trusted_proxies", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Security defaults; the secret has no usable default
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_key_id", "default")
	v.SetDefault("security.jwt_expiration", "1h")
	v.SetDefault("security.public_path_prefix", "/api/auth")

	// CORS defaults
	v.SetDefault("api.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("api.cors.allow_credentials", false)
	v.SetDefault("api.cors.max_age", 86400)
}

// overrideWithEnvVars maps the conventional unprefixed variables
func overrideWithEnvVars(v *viper.Viper) {
	envMappings := map[string]string{
		"JWT_SECRET":     "security.jwt_secret",
		"JWT_KEY_ID":     "security.jwt_key_id",
		"JWT_EXPIRATION": "security.jwt_expiration",
		"PORT":           "server.port",
		"GIN_MODE":       "server.mode",
		"LOG_LEVEL":      "logging.level",
		"LOG_FORMAT":     "logging.format",
		"LOG_FILE":       "logging.file",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Security.JWTSecret == "" {
		return errors.New("JWT secret is required")
	}
	if len(config.Security.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters", minSecretLength)
	}
	for kid, secret := range config.Security.VerificationKeys {
		if len(secret) < minSecretLength {
			return fmt.Errorf("verification key %q must be at least %d characters", kid, minSecretLength)
		}
	}
	if config.Security.JWTExpiration <= 0 {
		return errors.New("JWT expiration must be positive")
	}
	if !strings.HasPrefix(config.Security.PublicPathPrefix, "/") {
		return errors.New("public path prefix must start with /")
	}

	if config.Server.Port == "" {
		return errors.New("server port is required")
	}
	switch config.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode: %s", config.Server.Mode)
	}
	for _, proxy := range config.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy: %s", proxy)
		}
	}

	switch config.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", config.Logging.Format)
	}

	return nil
}

// VerificationKeyBytes returns the verification-only secrets as byte slices
func (s SecurityConfig) VerificationKeyBytes() map[string][]byte {
	keys := make(map[string][]byte, len(s.VerificationKeys))
	for kid, secret := range s.VerificationKeys {
		keys[kid] = []byte(secret)
	}
	return keys
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// SanitizeForLogging returns a copy of the config with sensitive data redacted
func (c *Config) SanitizeForLogging() *Config {
	sanitized := *c

	if sanitized.Security.JWTSecret != "" {
		sanitized.Security.JWTSecret = "[REDACTED]"
	}

	if len(c.Security.VerificationKeys) > 0 {
		redacted := make(map[string]string, len(c.Security.VerificationKeys))
		for kid := range c.Security.VerificationKeys {
			redacted[kid] = "[REDACTED]"
		}
		sanitized.Security.VerificationKeys = redacted
	}

	return &sanitized
}
