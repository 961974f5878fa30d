package identity

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var clientIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidClientID reports whether value is a well-formed 32-character lowercase
// hex client identifier.
func ValidClientID(value string) bool {
	return clientIDPattern.MatchString(value)
}

// Manager assigns stable client identifiers to image names. Identifiers are
// 128-bit values hex-encoded to 32 characters, generated once per name and
// reused across runs and processes.
type Manager struct {
	mu    sync.Mutex
	store Store
}

// NewManager builds a Manager over the provided store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// GetOrCreate returns the client identifier for imageName, generating and
// persisting a fresh one on first encounter. Stored values that do not match
// the identifier shape are replaced.
func (m *Manager) GetOrCreate(imageName string) (string, error) {
	imageName = strings.TrimSpace(imageName)
	if imageName == "" {
		return "", errors.New("image name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.store.Get(imageName)
	if err != nil {
		return "", err
	}
	if ValidClientID(existing) {
		return existing, nil
	}

	fresh := strings.ReplaceAll(uuid.New().String(), "-", "")
	return m.store.Put(imageName, fresh)
}
