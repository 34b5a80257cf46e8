package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued token
const DefaultTTL = time.Hour

// Registered claim names written by Issue
const (
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimRoles     = "roles"
)

// Claims is the decoded content of a validated token
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Values holds every claim other than sub, iat and exp.
	// JSON numbers decode as json.Number so integers keep full precision;
	// arrays decode as []any.
	Values map[string]any
}

// Get returns a custom claim value
func (c *Claims) Get(name string) (any, bool) {
	v, ok := c.Values[name]
	return v, ok
}

// Roles returns the roles claim when it is a string
func (c *Claims) Roles() string {
	roles, _ := c.Values[ClaimRoles].(string)
	return roles
}

// TokenService issues and validates HS256 signed tokens
type TokenService struct {
	keys   *KeySet
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a TokenService
type Option func(*TokenService)

// WithTTL overrides the token lifetime
func WithTTL(ttl time.Duration) Option {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for issuing and validating
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService creates a token service backed by the given keys
func NewTokenService(keys *KeySet, opts ...Option) *TokenService {
	s := &TokenService{
		keys: keys,
		ttl:  DefaultTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(s.now),
	)
	return s
}

// TTL returns the configured token lifetime
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject carrying the given claims.
// sub, iat and exp always override same-named entries in claims.
func (s *TokenService) Issue(subject string, claims map[string]any) (string, error) {
	now := s.now()

	mapClaims := make(jwt.MapClaims, len(claims)+3)
	for name, value := range claims {
		mapClaims[name] = value
	}
	mapClaims[ClaimSubject] = subject
	mapClaims[ClaimIssuedAt] = jwt.NewNumericDate(now)
	mapClaims[ClaimExpiresAt] = jwt.NewNumericDate(now.Add(s.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	token.Header["kid"] = s.keys.ActiveID()

	signed, err := token.SignedString(s.keys.signingKey())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token and returns its claims.
// Errors wrap ErrMalformed, ErrInvalidSignature or ErrExpired.
func (s *TokenService) Validate(raw string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, err := s.parser.ParseWithClaims(raw, mapClaims, s.keyFunc); err != nil {
		return nil, classify(err)
	}

	subject, err := mapClaims.GetSubject()
	if err != nil {
		return nil, classify(err)
	}

	claims := &Claims{
		Subject: subject,
		Values:  make(map[string]any, len(mapClaims)),
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	for name, value := range mapClaims {
		switch name {
		case ClaimSubject, ClaimIssuedAt, ClaimExpiresAt:
			continue
		}
		claims.Values[name] = value
	}

	return claims, nil
}

// IsValid reports whether the token validates, belongs to expectedSubject
// and has not expired
func (s *TokenService) IsValid(raw, expectedSubject string) bool {
	claims, err := s.Validate(raw)
	if err != nil {
		return false
	}
	return claims.Subject == expectedSubject && claims.ExpiresAt.After(s.now())
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, _ := token.Header["kid"].(string)
	return s.keys.lookup(kid)
}
