// Package storage persists transactions and budgets as JSON documents in a
// key-value store. Every failure degrades: loads fall back to an empty list
// and saves are logged, never returned.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/kv"
	"fintrack/internal/log"
)

const (
	TransactionsKey = "finance-transactions"
	BudgetsKey      = "finance-budgets"
)

// SaveNotifier is told about every successful save.
type SaveNotifier interface {
	NotifySaved(ctx context.Context, key string, count int) error
}

type Gateway struct {
	store    kv.Store
	notifier SaveNotifier
	logger   *log.Logger
}

// NewGateway wires a gateway over store. notifier may be nil.
func NewGateway(store kv.Store, notifier SaveNotifier, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Discard()
	}
	return &Gateway{
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentStorage),
	}
}

// Load returns the stored transactions, or an empty slice when nothing
// usable is stored.
func (g *Gateway) Load(ctx context.Context) []core.Transaction {
	return load[core.Transaction](ctx, g, TransactionsKey)
}

// Save replaces the stored transactions wholesale.
func (g *Gateway) Save(ctx context.Context, ts []core.Transaction) {
	save(ctx, g, TransactionsKey, ts)
}

func (g *Gateway) LoadBudgets(ctx context.Context) []core.Budget {
	return load[core.Budget](ctx, g, BudgetsKey)
}

func (g *Gateway) SaveBudgets(ctx context.Context, bs []core.Budget) {
	save(ctx, g, BudgetsKey, bs)
}

func load[T any](ctx context.Context, g *Gateway, key string) []T {
	raw, found, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to read from store",
			log.FieldKey, key, log.FieldOperation, log.OpLoad, log.FieldError, err)
		return []T{}
	}
	if !found {
		return []T{}
	}

	items, err := decodeList[T](raw)
	if err != nil {
		g.logger.WarnContext(ctx, "Discarding unreadable stored data",
			log.FieldKey, key, log.FieldOperation, log.OpLoad, log.FieldError, err)
		return []T{}
	}
	g.logger.DebugContext(ctx, "Loaded from store", log.FieldKey, key, log.FieldCount, len(items))
	return items
}

// decodeList accepts only a JSON array. null decodes to an empty list.
func decodeList[T any](raw []byte) ([]T, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if string(probe) == "null" {
		return []T{}, nil
	}
	if len(probe) == 0 || probe[0] != '[' {
		return nil, fmt.Errorf("stored value is not an array")
	}
	items := []T{}
	if err := json.Unmarshal(probe, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}

func save[T any](ctx context.Context, g *Gateway, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to encode data",
			log.FieldKey, key, log.FieldOperation, log.OpSave, log.FieldError, err)
		return
	}
	if err := g.store.Set(ctx, key, raw); err != nil {
		g.logger.ErrorContext(ctx, "Failed to write to store",
			log.FieldKey, key, log.FieldOperation, log.OpSave, log.FieldError, err)
		return
	}
	g.logger.DebugContext(ctx, "Saved to store", log.FieldKey, key, log.FieldCount, len(items))

	if g.notifier == nil {
		return
	}
	if err := g.notifier.NotifySaved(ctx, key, len(items)); err != nil {
		g.logger.WarnContext(ctx, "Failed to publish save notification",
			log.FieldKey, key, log.FieldError, err)
	}
}
