package storefake

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/tokenstore"
)

var _ tokenstore.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store for tests. It records call counts so
// tests can assert that an operation did (or did not) touch storage.
type FakeStore struct {
	lock sync.RWMutex
	pair *token.TokenPair

	SaveCalls  int
	ClearCalls int

	// SaveErr, when set, is returned by Save to simulate storage failure.
	SaveErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// NewFakeStoreWith returns a fake store pre-seeded with a pair.
func NewFakeStoreWith(pair token.TokenPair) *FakeStore {
	return &FakeStore{pair: &pair}
}

func (s *FakeStore) Load() (*token.TokenPair, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.pair == nil {
		return nil, nil
	}
	copied := *s.pair
	return &copied, nil
}

func (s *FakeStore) Save(pair token.TokenPair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.SaveCalls++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.pair = &pair
	return nil
}

func (s *FakeStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.ClearCalls++
	s.pair = nil
	return nil
}

// Stored returns the current stored pair, or nil.
func (s *FakeStore) Stored() *token.TokenPair {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.pair == nil {
		return nil
	}
	copied := *s.pair
	return &copied
}
