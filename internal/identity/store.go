package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Store abstracts persistence for the image name to client identifier map.
type Store interface {
	// Get returns the identifier mapped to name, or "" when absent.
	Get(name string) (string, error)
	// Put stores clientID for name unless a valid identifier is already
	// present, and returns the winning value.
	Put(name, clientID string) (string, error)
}

// FileStore persists the identity map as a JSON document at a shared
// well-known path. Every read-modify-write holds a file lock so concurrent
// processes mapping the same name converge on one identifier.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore builds a FileStore rooted at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the identifier for name. A missing or corrupt map resolves to an
// empty result rather than an error.
func (s *FileStore) Get(name string) (string, error) {
	if err := s.lock.Lock(); err != nil {
		return "", fmt.Errorf("lock identity store: %w", err)
	}
	defer s.lock.Unlock()

	mapping, err := s.load()
	if err != nil {
		return "", err
	}
	return mapping[name], nil
}

// Put stores clientID for name under the file lock. When another writer
// already recorded a valid identifier for name, that value wins and is
// returned unchanged.
func (s *FileStore) Put(name, clientID string) (string, error) {
	if err := s.lock.Lock(); err != nil {
		return "", fmt.Errorf("lock identity store: %w", err)
	}
	defer s.lock.Unlock()

	mapping, err := s.load()
	if err != nil {
		return "", err
	}
	if existing, ok := mapping[name]; ok && ValidClientID(existing) {
		return existing, nil
	}

	mapping[name] = clientID
	if err := s.save(mapping); err != nil {
		return "", err
	}
	return clientID, nil
}

// All returns a copy of every recorded name to identifier pair.
func (s *FileStore) All() (map[string]string, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock identity store: %w", err)
	}
	defer s.lock.Unlock()

	return s.load()
}

// Remove drops the mapping for name. Removing an absent name is a no-op.
func (s *FileStore) Remove(name string) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock identity store: %w", err)
	}
	defer s.lock.Unlock()

	mapping, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := mapping[name]; !ok {
		return nil
	}
	delete(mapping, name)
	return s.save(mapping)
}

// load reads the whole map. Missing, empty, and undecodable files are all
// treated as an empty map; the store must never fail a run over a damaged
// cache file.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read identity store: %w", err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil || mapping == nil {
		return map[string]string{}, nil
	}
	return mapping, nil
}

func (s *FileStore) save(mapping map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure identity store directory: %w", err)
	}

	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write identity store: %w", err)
	}
	return nil
}
