package memory

import (
	"context"
	"os"
	"sync"

	"fintrack/internal/kv"
)

// Store keeps values in process memory.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// NewFromFile seeds key with the contents of path. A missing or unreadable
// file leaves the store empty.
func NewFromFile(key, path string) *Store {
	s := New()
	if path == "" {
		return s
	}
	if b, err := os.ReadFile(path); err == nil && len(b) > 0 {
		s.values[key] = b
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}
