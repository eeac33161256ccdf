package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrInvalidCredentials is returned when username or password is incorrect
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned when trying to create a user that already exists
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when user is not found
	ErrUserNotFound = errors.New("user not found")
)

const (
	saltLength     = 16
	iterationCount = 4096
	keyLength      = 32
)

type user struct {
	salt []byte
	key  []byte
}

// Manager holds the server's HTTP users. Credentials live in memory only;
// they are provisioned at startup, not persisted in the database file.
type Manager struct {
	mu    sync.RWMutex
	users map[string]user
}

// NewManager creates an empty credential store
func NewManager() *Manager {
	return &Manager{users: make(map[string]user)}
}

// CreateUser registers a username with a PBKDF2-derived password key
func (m *Manager) CreateUser(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return ErrUserExists
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	m.users[username] = user{
		salt: salt,
		key:  pbkdf2.Key([]byte(password), salt, iterationCount, keyLength, sha256.New),
	}
	return nil
}

// DeleteUser removes a username
func (m *Manager) DeleteUser(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; !exists {
		return ErrUserNotFound
	}
	delete(m.users, username)
	return nil
}

// Len returns the number of registered users
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// Verify checks a username and password pair
func (m *Manager) Verify(username, password string) error {
	m.mu.RLock()
	u, exists := m.users[username]
	m.mu.RUnlock()

	if !exists {
		// Derive anyway so missing and present users cost the same.
		pbkdf2.Key([]byte(password), make([]byte, saltLength), iterationCount, keyLength, sha256.New)
		return ErrInvalidCredentials
	}

	key := pbkdf2.Key([]byte(password), u.salt, iterationCount, keyLength, sha256.New)
	if !hmac.Equal(key, u.key) {
		return ErrInvalidCredentials
	}
	return nil
}

// BasicAuth is HTTP middleware enforcing basic auth against the manager.
// With no registered users the middleware passes every request through.
func (m *Manager) BasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Len() == 0 {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || m.Verify(username, password) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="hozondb"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
