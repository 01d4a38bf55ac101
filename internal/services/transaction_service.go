package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// RecentCount is how many transactions the summary lists as recent.
const RecentCount = 3

var ErrNotFound = errors.New("transaction not found")

// TransactionStore is the whole-list persistence the services read and rewrite.
type TransactionStore interface {
	Load(ctx context.Context) []core.Transaction
	Save(ctx context.Context, ts []core.Transaction)
}

// TransactionService performs read-modify-write cycles over the stored list.
// Mutations within one process are serialized; across processes the last
// writer wins.
type TransactionService struct {
	store  TransactionStore
	logger *log.Logger
	now    func() time.Time
	newID  func() string

	mu sync.Mutex
}

func NewTransactionService(store TransactionStore, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		store:  store,
		logger: logger.WithComponent(log.ComponentService),
		now:    time.Now,
		newID:  core.GenerateID,
	}
}

// Create validates in, assigns a fresh id and appends it to the stored list.
func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := in.WithID(s.newID())
	ts := s.store.Load(ctx)
	ts = append(ts, t)
	s.store.Save(ctx, ts)

	log.NewStructuredLogger(s.logger).LogTransactionCreated(ctx, t.ID, t.Amount.StringFixed(2), string(t.Type), t.Category)
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	for _, t := range s.store.Load(ctx) {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Update overwrites the transaction with the given id. The id never changes.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.store.Load(ctx)
	for i := range ts {
		if ts[i].ID != id {
			continue
		}
		ts[i] = in.WithID(id)
		s.store.Save(ctx, ts)
		s.logger.InfoContext(ctx, "Transaction updated",
			log.FieldTransactionID, id, log.FieldOperation, log.OpUpdate)
		return ts[i], nil
	}
	return core.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.store.Load(ctx)
	kept := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(ts) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.store.Save(ctx, kept)
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id, log.FieldOperation, log.OpDelete)
	return nil
}

// List returns the stored transactions newest first.
func (s *TransactionService) List(ctx context.Context) []core.Transaction {
	return aggregate.SortByDate(s.store.Load(ctx))
}

// Summary aggregates the whole list. A zero ref means the current month.
func (s *TransactionService) Summary(ctx context.Context, ref time.Time) core.Summary {
	if ref.IsZero() {
		ref = s.now()
	}
	return aggregate.Summarize(s.store.Load(ctx), ref, RecentCount)
}
