package auth

import "context"

type identityKey struct{}

// Identity is the authenticated principal attached to a single request.
// Roles carried by the token are not copied into Authorities.
type Identity struct {
	Username    string   `json:"username"`
	Credentials string   `json:"-"`
	Authorities []string `json:"authorities"`

	// Request details
	ClientIP  string `json:"client_ip,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewIdentity builds an identity for username with no credentials
// and no granted authorities
func NewIdentity(username string) *Identity {
	return &Identity{
		Username:    username,
		Authorities: []string{},
	}
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached to ctx, if any
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(identityKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}
