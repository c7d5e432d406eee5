package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-client/token"
)

var _ Store = (*FileStore)(nil)

// FileStore stores the token pair as a JSON file under a namespaced path,
// typically inside the user config directory. It is the durable equivalent
// of a browser's origin-scoped local storage entry.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. Parent directories are
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file path backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored token pair. A missing file means logged-out. A
// corrupt or incomplete file is removed and reported as absent.
func (s *FileStore) Load() (*token.TokenPair, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, nil
	}

	var pair token.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil || !pair.Valid() {
		log.Warn().Str("path", s.path).Msg("discarding unreadable token file")
		_ = os.Remove(s.path)
		return nil, nil
	}

	return &pair, nil
}

// Save writes the pair synchronously. The write goes to a temp file first
// and is renamed into place so a crash never leaves a half-written record.
func (s *FileStore) Save(pair token.TokenPair) error {
	if !pair.Valid() {
		return errors.New("token pair requires both access and refresh tokens")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encode token pair: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace token file: %w", err)
	}

	return nil
}

// Clear removes the stored pair. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
