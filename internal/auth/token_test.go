package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "test-secret-key-for-unit-tests-0123456789"
	testOtherSecret = "another-secret-key-for-unit-tests-9876543210"
)

var testNow = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func newTestKeys(t *testing.T) *KeySet {
	t.Helper()
	keys, err := NewKeySet("primary", []byte(testSecret), nil)
	require.NoError(t, err)
	return keys
}

func newTestService(t *testing.T, now func() time.Time) *TokenService {
	t.Helper()
	return NewTokenService(newTestKeys(t), WithClock(now))
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))

	tests := []struct {
		name    string
		subject string
		claims  map[string]any
		// want overrides claims for values that change representation
		want map[string]any
	}{
		{name: "role claim", subject: "alice", claims: map[string]any{"roles": "ADMIN"}},
		{name: "no claims", subject: "bob"},
		{name: "empty claims", subject: "carol", claims: map[string]any{}},
		{name: "empty subject", subject: "", claims: map[string]any{"roles": "USER"}},
		{name: "several claims", subject: "dave", claims: map[string]any{"roles": "USER", "tenant": "acme", "scopes": []any{"read", "write"}}},
		{name: "unicode subject", subject: "ユーザー", claims: map[string]any{"roles": ""}},
		{
			name:    "integer claims",
			subject: "erin",
			claims:  map[string]any{"n": 5, "uid": int64(9007199254740993), "neg": int64(-42)},
			want:    map[string]any{"n": json.Number("5"), "uid": json.Number("9007199254740993"), "neg": json.Number("-42")},
		},
		{
			name:    "fractional and boolean claims",
			subject: "frank",
			claims:  map[string]any{"ratio": 0.25, "admin": true, "meta": nil},
			want:    map[string]any{"ratio": json.Number("0.25"), "admin": true, "meta": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Issue(tt.subject, tt.claims)
			require.NoError(t, err)
			assert.Len(t, strings.Split(token, "."), 3)

			claims, err := svc.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, claims.Subject)
			assert.Equal(t, testNow, claims.IssuedAt.UTC())
			assert.Equal(t, testNow.Add(DefaultTTL), claims.ExpiresAt.UTC())

			want := tt.claims
			if tt.want != nil {
				want = tt.want
			}
			assert.Len(t, claims.Values, len(want))
			for name, value := range want {
				got, ok := claims.Get(name)
				assert.True(t, ok, "claim %q missing", name)
				assert.Equal(t, value, got, "claim %q", name)
			}
		})
	}
}

func TestIssueRegisteredClaimsOverrideCallerClaims(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))

	token, err := svc.Issue("alice", map[string]any{
		"sub": "mallory",
		"exp": float64(testNow.Add(100 * time.Hour).Unix()),
	})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, testNow.Add(time.Hour), claims.ExpiresAt.UTC())
	assert.Empty(t, claims.Values)
}

func TestIssueHeader(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))

	token, err := svc.Issue("alice", map[string]any{"roles": "ADMIN"})
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, "primary", parsed.Header["kid"])

	mapClaims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", mapClaims["sub"])
	assert.Equal(t, "ADMIN", mapClaims["roles"])
	assert.Equal(t, float64(testNow.Unix()), mapClaims["iat"])
	assert.Equal(t, float64(testNow.Add(time.Hour).Unix()), mapClaims["exp"])
}

func TestValidateExpiry(t *testing.T) {
	issuer := newTestService(t, fixedClock(testNow))
	token, err := issuer.Issue("alice", map[string]any{"roles": "ADMIN"})
	require.NoError(t, err)

	expiry := testNow.Add(DefaultTTL)

	tests := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{"immediately", testNow, false},
		{"half way", testNow.Add(30 * time.Minute), false},
		{"one nanosecond before expiry", expiry.Add(-time.Nanosecond), false},
		{"at expiry", expiry, true},
		{"one second after expiry", expiry.Add(time.Second), true},
		{"a day later", expiry.Add(24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := newTestService(t, fixedClock(tt.at))

			claims, err := validator.Validate(token)
			if tt.expired {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrExpired)
				assert.Equal(t, KindExpired, Kind(err))
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Subject)
		})
	}
}

func TestValidateCustomTTL(t *testing.T) {
	keys := newTestKeys(t)
	issuer := NewTokenService(keys, WithTTL(5*time.Minute), WithClock(fixedClock(testNow)))
	assert.Equal(t, 5*time.Minute, issuer.TTL())

	token, err := issuer.Issue("alice", nil)
	require.NoError(t, err)

	later := NewTokenService(keys, WithClock(fixedClock(testNow.Add(6*time.Minute))))
	_, err = later.Validate(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))
	token, err := svc.Issue("alice", map[string]any{"roles": "ADMIN"})
	require.NoError(t, err)

	original := []byte(token)
	for i := range original {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), original...)
			mutated[i] ^= 1 << bit

			_, err := svc.Validate(string(mutated))
			if !assert.Error(t, err, "byte %d bit %d accepted", i, bit) {
				continue
			}
			assert.True(t,
				errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrMalformed),
				"byte %d bit %d: unexpected error %v", i, bit, err)
		}
	}
}

func TestValidateForgedPayload(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))
	token, err := svc.Issue("alice", map[string]any{"roles": "USER"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"sub":"alice","roles":"ADMIN","iat":1767366245,"exp":1767369845}`))

	_, err = svc.Validate(parts[0] + "." + forged + "." + parts[2])
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, KindInvalidSignature, Kind(err))
}

func TestValidateWrongSecret(t *testing.T) {
	other, err := NewKeySet("primary", []byte(testOtherSecret), nil)
	require.NoError(t, err)
	issuer := NewTokenService(other, WithClock(fixedClock(testNow)))

	token, err := issuer.Issue("alice", nil)
	require.NoError(t, err)

	_, err = newTestService(t, fixedClock(testNow)).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))
	claims := jwt.MapClaims{
		"sub": "alice",
		"iat": testNow.Unix(),
		"exp": testNow.Add(time.Hour).Unix(),
	}

	t.Run("HS512", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("none", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestValidateMalformed(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"bad base64", "!!!.@@@.###"},
		{"header not json", base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".e30.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Equal(t, KindMalformed, Kind(err))
		})
	}
}

func TestValidateMissingExpiry(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"})
	token.Header["kid"] = "primary"
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestValidateKeyLookup(t *testing.T) {
	keys, err := NewKeySet("current", []byte(testSecret), map[string][]byte{
		"previous": []byte(testOtherSecret),
	})
	require.NoError(t, err)
	svc := NewTokenService(keys, WithClock(fixedClock(testNow)))

	sign := func(kid, secret string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "alice",
			"iat": testNow.Unix(),
			"exp": testNow.Add(time.Hour).Unix(),
		})
		if kid != "" {
			token.Header["kid"] = kid
		}
		signed, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	t.Run("verification key accepted", func(t *testing.T) {
		claims, err := svc.Validate(sign("previous", testOtherSecret))
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("missing kid falls back to active key", func(t *testing.T) {
		_, err := svc.Validate(sign("", testSecret))
		assert.NoError(t, err)
	})

	t.Run("unknown kid rejected", func(t *testing.T) {
		_, err := svc.Validate(sign("retired", testOtherSecret))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("kid pointing at wrong key rejected", func(t *testing.T) {
		_, err := svc.Validate(sign("current", testOtherSecret))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestIsValid(t *testing.T) {
	svc := newTestService(t, fixedClock(testNow))
	token, err := svc.Issue("alice", map[string]any{"roles": "ADMIN"})
	require.NoError(t, err)

	assert.True(t, svc.IsValid(token, "alice"))
	assert.False(t, svc.IsValid(token, "bob"))
	assert.False(t, svc.IsValid(token, ""))
	assert.False(t, svc.IsValid("garbage", "alice"))

	expired := newTestService(t, fixedClock(testNow.Add(2*time.Hour)))
	assert.False(t, expired.IsValid(token, "alice"))
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindUnknown, Kind(nil))
	assert.Equal(t, KindUnknown, Kind(errors.New("boom")))
	assert.Equal(t, KindMalformed, Kind(ErrMalformed))
}

func TestNewKeySet(t *testing.T) {
	t.Run("default id", func(t *testing.T) {
		keys, err := NewKeySet("", []byte(testSecret), nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultKeyID, keys.ActiveID())
		assert.Equal(t, []string{DefaultKeyID}, keys.IDs())
	})

	t.Run("short active key", func(t *testing.T) {
		_, err := NewKeySet("primary", []byte("too-short"), nil)
		assert.Error(t, err)
	})

	t.Run("short verification key", func(t *testing.T) {
		_, err := NewKeySet("primary", []byte(testSecret), map[string][]byte{"old": []byte("short")})
		assert.Error(t, err)
	})

	t.Run("id collision", func(t *testing.T) {
		_, err := NewKeySet("primary", []byte(testSecret), map[string][]byte{"primary": []byte(testOtherSecret)})
		assert.Error(t, err)
	})

	t.Run("caller buffer copied", func(t *testing.T) {
		secret := []byte(testSecret)
		keys, err := NewKeySet("primary", secret, nil)
		require.NoError(t, err)
		secret[0] = 'X'

		svc := NewTokenService(keys, WithClock(fixedClock(testNow)))
		token, err := svc.Issue("alice", nil)
		require.NoError(t, err)
		assert.True(t, newTestService(t, fixedClock(testNow)).IsValid(token, "alice"))
	})
}
