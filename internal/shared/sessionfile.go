package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// SessionFile is the on-disk form of a saved backend session: the cookies
// the backend issued, tied to the base URL they were issued for.
type SessionFile struct {
	BaseURL string         `json:"base_url"`
	Cookies []*http.Cookie `json:"cookies"`
}

// Matches reports whether the saved session belongs to the given backend
// base URL. Cookies saved for one host are never replayed against another.
func (s *SessionFile) Matches(baseURL string) bool {
	saved, err := url.Parse(s.BaseURL)
	if err != nil {
		return false
	}
	current, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return saved.Host == current.Host
}

// DefaultSessionPath returns the session file location under the user's
// home directory.
func DefaultSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".inkwell", "session.json"), nil
}

// SaveSessionFile writes the session to path, creating parent directories.
// The file is written 0600 since it holds credentials.
func SaveSessionFile(path string, session *SessionFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// LoadSessionFile reads a saved session from path.
func LoadSessionFile(path string) (*SessionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session SessionFile
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &session, nil
}

// RemoveSessionFile deletes the saved session. A missing file is not an
// error.
func RemoveSessionFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
