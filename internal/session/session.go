// Package session holds the authenticated role across restarts: one
// durable key-value slot, read on startup, written on login, cleared
// on logout.
package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

type Store interface {
	Role() (string, bool)
	SetRole(id string) error
	Clear() error
}

type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Role() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	role := strings.TrimSpace(string(data))
	if role == "" {
		return "", false
	}
	return role, true
}

func (s *FileStore) SetRole(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to persist session role: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session role: %w", err)
	}
	return nil
}
