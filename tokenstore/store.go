// Package tokenstore persists the current token pair across process
// restarts. It is pure storage: no decoding, no expiry logic.
package tokenstore

import (
	"github.com/jrsteele09/go-auth-client/token"
)

// Store is the durable key/value home of the current token pair.
//
// Load never fails closed: a corrupt or unparsable stored value is reported
// as absent (nil, nil) so a broken store degrades to logged-out, never to an
// invalid authenticated state. Save and Clear complete before returning.
type Store interface {
	Load() (*token.TokenPair, error)
	Save(pair token.TokenPair) error
	Clear() error
}
