// Package authtest mints signed JWT fixtures for tests. The client never
// verifies signatures, so a static HS256 test secret is enough.
package authtest

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const signingSecret = "test-signing-secret"

// TokenSpec describes the claims of a minted access token.
type TokenSpec struct {
	Subject   string
	Email     string
	Verified  bool
	ExpiresAt time.Time
	Extra     map[string]any
}

// Mint signs an access token carrying the given claims.
func Mint(t *testing.T, spec TokenSpec) string {
	t.Helper()

	claims := jwtlib.MapClaims{
		"sub":      spec.Subject,
		"email":    spec.Email,
		"verified": spec.Verified,
		"exp":      spec.ExpiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}
	for name, value := range spec.Extra {
		claims[name] = value
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	require.NoError(t, err)
	return signed
}

// MintRefresh signs an opaque-looking refresh token; only its shape matters
// to the client.
func MintRefresh(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":        subject,
		"token_type": "refresh",
		"exp":        expiresAt.Unix(),
	}).SignedString([]byte(signingSecret))
	require.NoError(t, err)
	return signed
}
