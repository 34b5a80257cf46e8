package interfaces

import "token-auth/internal/auth"

// TokenIssuer mints signed tokens
type TokenIssuer interface {
	Issue(subject string, claims map[string]any) (string, error)
}

// TokenValidator verifies signed tokens
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthServiceInterface is the token service as seen by handlers and middleware
type AuthServiceInterface interface {
	TokenIssuer
	TokenValidator
	IsValid(token, expectedSubject string) bool
}
