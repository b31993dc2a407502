package session

import (
	"sync"
	"time"
)

// MemStore keeps the token in memory only. Used by tests and --ephemeral runs.
type MemStore struct {
	mu   sync.Mutex
	info *TokenInfo
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Token() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return "", false, nil
	}
	return s.info.Token, true, nil
}

func (s *MemStore) SetToken(token string) error {
	token, err := normalize(token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = &TokenInfo{Token: token, Source: SourceMemory, CreatedAt: time.Now().UTC()}
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = nil
	return nil
}

func (s *MemStore) Info() (*TokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return nil, nil
	}
	cp := *s.info
	return &cp, nil
}
