package backend

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/kv"
	"fintrack/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the store can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult holds the wired storage stack and its cleanup.
type BackendResult struct {
	Store   kv.Store
	Gateway *storage.Gateway
	Ready   ReadyFunc
	Cleanup CleanupFunc

	// AMQP is nil when publishing is disabled or the broker was unreachable.
	AMQP *amqp.Client

	// CacheStats is nil when the store cache is disabled.
	CacheStats func() cache.Stats
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: JSON file seeding the transactions key
	SeedFile string

	// Read-through cache in front of the store; zero size disables it
	CacheSize int
	CacheTTL  time.Duration

	// AMQP snapshot notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
