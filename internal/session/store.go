// Package session keeps the bearer token between runs.
//
// A Store has no expiry or refresh logic: the token lives until logout.
// Open wraps the configured backend so that ITEMDASH_TOKEN, when set,
// takes precedence over whatever the backend holds.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvToken overrides any stored token when set.
const EnvToken = "ITEMDASH_TOKEN"

// Token sources reported by Info.
const (
	SourceEnv    = "env"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceMemory = "memory"
)

// TokenInfo describes the current token.
type TokenInfo struct {
	Token     string    `json:"token"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Store holds at most one bearer token.
type Store interface {
	// Token returns the stored token, ok=false when logged out.
	Token() (token string, ok bool, err error)
	SetToken(token string) error
	Clear() error
	// Info returns nil, nil when no token is stored.
	Info() (*TokenInfo, error)
}

// Open returns the backend named by backend, rooted at dir, with the
// environment override applied.
func Open(backend, dir string) (Store, error) {
	var s Store
	switch backend {
	case "", "file":
		s = NewFileStore(dir)
	case "sqlite":
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
		sq, err := OpenSQLStore(filepath.Join(dir, "session.db"))
		if err != nil {
			return nil, err
		}
		s = sq
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
	return WithEnvOverride(s), nil
}

// WithEnvOverride makes ITEMDASH_TOKEN win over s on reads.
// Writes always go to s.
func WithEnvOverride(s Store) Store {
	return envStore{Store: s}
}

type envStore struct {
	Store
}

func envToken() string {
	return StripBearer(strings.TrimSpace(os.Getenv(EnvToken)))
}

func (e envStore) Token() (string, bool, error) {
	if tok := envToken(); tok != "" {
		return tok, true, nil
	}
	return e.Store.Token()
}

func (e envStore) Info() (*TokenInfo, error) {
	if tok := envToken(); tok != "" {
		return &TokenInfo{Token: tok, Source: SourceEnv}, nil
	}
	return e.Store.Info()
}

// Close releases the backend if it holds resources.
func Close(s Store) error {
	if e, ok := s.(envStore); ok {
		s = e.Store
	}
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// StripBearer removes a leading "Bearer " so pasted headers still work.
func StripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

func normalize(token string) (string, error) {
	token = StripBearer(strings.TrimSpace(token))
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}
