// Package session holds the signed-in user's identity and bearer token on the
// client side.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"reminders-lite/internal/model"
)

var ErrNoSession = errors.New("not logged in")

type Store struct {
	mu      sync.RWMutex
	current model.Session
	path    string
}

// NewMemory returns a store that forgets the session when the process exits.
func NewMemory() *Store {
	return &Store{}
}

// Open loads the session file at path, if any. Later Set and Clear calls keep
// the file in sync.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	var persisted persistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if persisted.Version != 1 {
		return nil, errors.New("unsupported session file version")
	}
	s.current = persisted.Session
	return s, nil
}

type persistedSession struct {
	Version int `json:"version"`
	model.Session
}

// Current implements cache.SessionSource.
func (s *Store) Current() (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.current.Valid() {
		return model.Session{}, ErrNoSession
	}
	return s.current, nil
}

func (s *Store) Set(sess model.Session) error {
	if !sess.Valid() {
		return errors.New("session requires user id and token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(sess); err != nil {
		return err
	}
	s.current = sess
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = model.Session{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// persist writes through a temp file and rename so a crash never leaves a
// truncated session behind.
func (s *Store) persist(sess model.Session) error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(persistedSession{Version: 1, Session: sess}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}
