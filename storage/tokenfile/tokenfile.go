// Package tokenfile persists the session's bearer token as a single file,
// the durable-storage analog of the browser's one localStorage key.
package tokenfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/apetrei/examsched/core/session"
)

type Storage struct {
	path string
}

var _ session.TokenStorage = (*Storage)(nil)

func New(path string) *Storage {
	return &Storage{path: path}
}

// Read returns the stored token; an absent file means unauthenticated.
func (s *Storage) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "reading token file")
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Storage) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating token dir")
	}
	// 0600: the token is a credential
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return errors.Wrap(err, "writing token file")
	}
	return nil
}

func (s *Storage) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing token file")
	}
	return nil
}
