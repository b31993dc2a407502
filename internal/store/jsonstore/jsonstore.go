package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Makepad-fr/itemdash/internal/model"
)

// JSON-backed persistence for the mock backend. Single file,
// human-readable, rewritten in full on every save.

// DefaultFileName is used when the mock server is given a directory.
const DefaultFileName = "items.json"

// User is a registered account as persisted by the mock backend.
type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// Snapshot is the whole persisted state.
type Snapshot struct {
	Users []User       `json:"users"`
	Items []model.Item `json:"items"`
}

// Store reads and writes a Snapshot at a fixed path.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store for path. If path is an existing directory the
// data lives in DefaultFileName inside it.
func New(path string) *Store {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the stored snapshot, or an empty one if the file does not
// exist yet.
func (s *Store) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{Users: []User{}, Items: []model.Item{}}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if snap.Users == nil {
		snap.Users = []User{}
	}
	if snap.Items == nil {
		snap.Items = []model.Item{}
	}
	return &snap, nil
}

// Save replaces the file through a temp file and rename, so a crash never
// leaves half a document behind.
func (s *Store) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".items-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
