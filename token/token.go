package token

// TokenPair holds the access/refresh token pair issued by the backend.
// Both tokens are opaque signed JWTs; the client decodes the access token's
// payload for display and gating but never verifies signatures.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Valid reports whether the pair satisfies the storage invariant: a stored
// pair always has both tokens present.
func (tp TokenPair) Valid() bool {
	return tp.Access != "" && tp.Refresh != ""
}
