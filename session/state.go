package session

import (
	"github.com/jrsteele09/go-auth-client/token"
)

// State is an immutable snapshot of the current session: the token pair,
// the identity decoded from the access token, and the startup flag.
//
// Tokens and Identity are always set and cleared together; a snapshot never
// carries one without the other. Initializing is true only during the
// synchronous startup read of the token store and flips to false exactly
// once for the lifetime of the process.
type State struct {
	Tokens       *token.TokenPair
	Identity     *token.Identity
	Initializing bool
}

// Authenticated reports whether an active session exists.
func (s State) Authenticated() bool {
	return s.Tokens != nil
}
