package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Reserved claim names that are lifted into Identity fields rather than
// kept in the Extra map.
var reservedClaims = map[string]struct{}{
	"sub": {}, "user_id": {}, "email": {}, "verified": {},
	"exp": {}, "iat": {}, "jti": {}, "iss": {}, "aud": {}, "token_type": {},
}

// Identity is the decoded payload of an access token. It is derived state:
// always recomputed from the current access token, never persisted on its
// own. The signature is NOT verified client-side; the backend remains the
// authority on token validity.
type Identity struct {
	Subject   string
	Email     string
	Verified  bool
	IssuedAt  *time.Time
	ExpiresAt time.Time

	// Extra holds any additional display claims the backend embeds
	// (full name, bio, profile image URL).
	Extra map[string]any
}

// DecodeIdentity decodes the claims payload of a raw access token without
// verifying its signature.
func DecodeIdentity(rawToken string) (*Identity, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("empty token")
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	identity := &Identity{Extra: make(map[string]any)}

	identity.Subject = subjectClaim(claims)
	identity.Email, _ = claims["email"].(string)
	identity.Verified, _ = claims["verified"].(bool)

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = utils.Ptr(iat.Time)
	}

	for name, value := range claims {
		if _, reserved := reservedClaims[name]; reserved {
			continue
		}
		identity.Extra[name] = value
	}

	return identity, nil
}

// Expired reports whether the token has expired as of now, treating a token
// that expires within skew as already expired. The negative skew keeps the
// client from racing the backend's own clock.
func (id *Identity) Expired(skew time.Duration) bool {
	if id.ExpiresAt.IsZero() {
		return true
	}
	return NowTimeFunc().Add(skew).After(id.ExpiresAt)
}

// Merge folds updated profile fields into the identity's display claims.
// It is a partial merge: fields absent from the update keep their current
// values, since the backend may not echo every field back.
func (id *Identity) Merge(fields map[string]any) {
	for name, value := range fields {
		if value == nil {
			continue
		}
		switch name {
		case "email":
			if email, ok := value.(string); ok && email != "" {
				id.Email = email
			}
		default:
			if _, reserved := reservedClaims[name]; reserved {
				continue
			}
			if id.Extra == nil {
				id.Extra = make(map[string]any)
			}
			id.Extra[name] = value
		}
	}
}

// subjectClaim extracts the user identifier, accepting either a standard
// "sub" claim or the numeric "user_id" claim some token backends emit.
func subjectClaim(claims jwtlib.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	switch v := claims["user_id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
