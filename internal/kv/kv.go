// Package kv defines the key-value store that backs the storage gateway.
package kv

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/cache"
)

// Store is a string-keyed store of opaque values. Set overwrites.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedStore is a read-through, write-through cache in front of a Store.
type CachedStore struct {
	next  Store
	cache cache.Cache[[]byte]
}

var _ Store = (*CachedStore)(nil)

func Cached(next Store, c cache.Cache[[]byte]) *CachedStore {
	return &CachedStore{next: next, cache: c}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "kv cache hit", "key", key)
		return clone(v), true, nil
	}
	v, found, err := s.next.Get(ctx, key)
	if err != nil || !found {
		return v, found, err
	}
	s.cache.Set(key, clone(v))
	return v, true, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		s.cache.Delete(key)
		return fmt.Errorf("write through: %w", err)
	}
	s.cache.Set(key, clone(value))
	return nil
}

// Close closes the wrapped store when it supports closing.
func (s *CachedStore) Close() error {
	if c, ok := s.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
