// Package local is the file-backed store used when no remote database
// is configured. It keeps one JSON file per namespaced key
// ("<kind>_<ownerEmail>") and always reads and writes whole
// collections, mirroring a browser localStorage layout.
package local

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Store reads and writes JSON values under a data directory, one file
// per key. Malformed or missing content never reaches the caller as an
// error: it reads as an empty value.
type Store struct {
	dir           string
	fallbackOwner string
	log           *zap.SugaredLogger

	mu sync.Mutex
}

// NewStore opens (creating if needed) the data directory. fallbackOwner
// scopes collections when no owner is known, the demo identity.
func NewStore(dir, fallbackOwner string, log *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, fallbackOwner: fallbackOwner, log: log.Named("localstore")}, nil
}

// OwnerOrFallback substitutes the demo owner for an unset one.
func (s *Store) OwnerOrFallback(owner string) string {
	if owner == "" {
		return s.fallbackOwner
	}
	return owner
}

// Load decodes the value stored under key into out. A missing or
// corrupt file leaves out untouched; corruption is logged and treated
// as absence.
func (s *Store) Load(key string, out any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnw("failed to read stored collection", "key", key, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warnw("stored collection is malformed, treating as empty", "key", key, "error", err)
	}
}

// Save replaces the value stored under key. The write goes through a
// temp file and a rename so readers never observe a partial write.
func (s *Store) Save(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

// Clear removes the value stored under key. Clearing an absent key is
// a no-op.
func (s *Store) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps keys filesystem-safe. Emails contribute '@' and
// '.', which are fine; anything else exotic becomes '-'.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '@', r == '.', r == '_', r == '-', r == '+':
			return r
		}
		return '-'
	}, key)
}
