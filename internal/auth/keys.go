package auth

import (
	"errors"
	"fmt"
	"sort"
)

// MinKeyLength is the minimum HMAC key size in bytes (256 bits)
const MinKeyLength = 32

// DefaultKeyID is used when no key identifier is configured
const DefaultKeyID = "default"

var errUnknownKey = errors.New("unknown signing key")

// KeySet holds the HMAC secrets used to sign and verify tokens.
// The active key signs new tokens; every key in the set verifies.
// A KeySet is immutable once built and safe for concurrent use.
type KeySet struct {
	activeID string
	keys     map[string][]byte
}

// NewKeySet builds a key set from the active secret and optional
// verification-only secrets keyed by id
func NewKeySet(activeID string, active []byte, verification map[string][]byte) (*KeySet, error) {
	if activeID == "" {
		activeID = DefaultKeyID
	}
	if len(active) < MinKeyLength {
		return nil, fmt.Errorf("signing key %q must be at least %d bytes", activeID, MinKeyLength)
	}

	keys := make(map[string][]byte, len(verification)+1)
	for id, secret := range verification {
		if id == activeID {
			return nil, fmt.Errorf("verification key id %q collides with the active key", id)
		}
		if len(secret) < MinKeyLength {
			return nil, fmt.Errorf("verification key %q must be at least %d bytes", id, MinKeyLength)
		}
		keys[id] = append([]byte(nil), secret...)
	}
	keys[activeID] = append([]byte(nil), active...)

	return &KeySet{activeID: activeID, keys: keys}, nil
}

// ActiveID returns the identifier stamped into newly issued tokens
func (k *KeySet) ActiveID() string {
	return k.activeID
}

// IDs returns all key identifiers in the set, sorted
func (k *KeySet) IDs() []string {
	ids := make([]string, 0, len(k.keys))
	for id := range k.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (k *KeySet) signingKey() []byte {
	return k.keys[k.activeID]
}

// lookup resolves a key id from a token header. Tokens without a kid
// are checked against the active key.
func (k *KeySet) lookup(kid string) ([]byte, error) {
	if kid == "" {
		return k.signingKey(), nil
	}
	key, ok := k.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownKey, kid)
	}
	return key, nil
}
