package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/kv"
	"fintrack/internal/kv/memory"
	"fintrack/internal/kv/sqlite"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	// publish controls whether the gateway notifies AMQP after saves.
	publish bool
}

// NewFactory creates a factory whose gateway publishes snapshot
// notifications when AMQP is configured.
func NewFactory(logger *log.Logger) Factory {
	return newFactory(logger, true)
}

// NewConsumerFactory creates a factory for processes that only read the
// store and consume notifications; its gateway never publishes.
func NewConsumerFactory(logger *log.Logger) Factory {
	return newFactory(logger, false)
}

func newFactory(logger *log.Logger, publish bool) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger:  logger.WithComponent(log.ComponentBackend),
		publish: publish,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store kv.Store
		ready ReadyFunc
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, ready, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = f.createMemoryStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	var (
		cleanups   []CleanupFunc
		cacheStats func() cache.Stats
	)
	if closer, ok := store.(interface{ Close() error }); ok {
		cleanups = append(cleanups, closer.Close)
	}

	// Consumers read rows written by another process; a local cache would
	// serve them stale snapshots.
	if config.CacheSize > 0 && !f.publish {
		f.logger.Info("Store cache disabled for consumer", "size", config.CacheSize)
	}
	if config.CacheSize > 0 && f.publish {
		lru := cache.NewLRUCache[[]byte](config.CacheSize, config.CacheTTL)
		manager := cache.NewManager()
		manager.Register(lru)
		manager.StartCleanup(config.CacheTTL)
		cleanups = append(cleanups, func() error { manager.Stop(); return nil })
		store = kv.Cached(store, lru)
		cacheStats = lru.Stats
		f.logger.Info("Enabled store cache", "size", config.CacheSize, "ttl", config.CacheTTL.String())
	}

	amqpClient := f.connectAMQP(ctx, config)
	if amqpClient != nil {
		cleanups = append(cleanups, amqpClient.Close)
	}

	// A nil *amqp.Client must not become a non-nil interface.
	var notifier storage.SaveNotifier
	if amqpClient != nil && f.publish {
		notifier = amqpClient
	}

	return &BackendResult{
		Store:      store,
		Gateway:    storage.NewGateway(store, notifier, f.logger),
		AMQP:       amqpClient,
		Ready:      ready,
		CacheStats: cacheStats,
		Cleanup:    joinCleanups(cleanups),
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (kv.Store, ReadyFunc, error) {
	store, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return store, store.Ping, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) kv.Store {
	store := memory.NewFromFile(storage.TransactionsKey, config.SeedFile)
	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)
	return store
}

// connectAMQP dials the broker when configured. Failure is logged and the
// backend continues without notifications.
func (f *DefaultFactory) connectAMQP(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without sync", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// joinCleanups runs cleanups in reverse order and joins their errors.
func joinCleanups(cleanups []CleanupFunc) CleanupFunc {
	return func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
