package session

import (
	"os"
	"path/filepath"
	"strings"
)

// TokenFile persists the bearer token across bridge restarts, the
// localStorage of this process. One opaque string, owner-only permissions.
type TokenFile struct {
	path string
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

func (t *TokenFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(t.path, []byte(token+"\n"), 0o600)
}

// Load returns the stored token, or empty if none was persisted.
func (t *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (t *TokenFile) Clear() error {
	err := os.Remove(t.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
