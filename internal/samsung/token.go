package samsung

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the pairing token the TV issues after the user
// approves a connection on screen. With a saved token later sessions skip
// the permission prompt entirely.
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store backed by the given file path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the saved token, or an empty string when none exists yet
func (s *TokenStore) Load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save writes the token with owner-only permissions, creating parent
// directories as needed
func (s *TokenStore) Save(token string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the saved token so the next connect re-pairs
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Path returns where the token lives on disk
func (s *TokenStore) Path() string {
	return s.path
}
