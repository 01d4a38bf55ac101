package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// SnapshotSource is the read side of the storage gateway.
type SnapshotSource interface {
	Load(ctx context.Context) []core.Transaction
	LoadBudgets(ctx context.Context) []core.Budget
}

// MirrorWorker copies stored snapshots to an external mirror. It reacts to
// snapshot.saved messages and, as a backup for lost messages, resyncs
// everything on a fixed interval.
type MirrorWorker struct {
	source   SnapshotSource
	mirror   sheets.TransactionMirror
	logger   *log.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewMirrorWorker creates a worker. A zero interval disables periodic resync.
func NewMirrorWorker(source SnapshotSource, mirror sheets.TransactionMirror, interval time.Duration, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		source:   source,
		mirror:   mirror,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSnapshot mirrors the collection named by msg. Unknown keys are
// acknowledged and ignored.
func (w *MirrorWorker) HandleSnapshot(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	w.logger.InfoContext(ctx, "Processing snapshot message",
		log.FieldKey, msg.Key, log.FieldCount, msg.Count)

	switch msg.Key {
	case storage.TransactionsKey:
		return w.syncTransactions(ctx)
	case storage.BudgetsKey:
		return w.syncBudgets(ctx)
	default:
		w.logger.WarnContext(ctx, "Ignoring snapshot for unknown key", log.FieldKey, msg.Key)
		return nil
	}
}

// SyncAll mirrors transactions and budgets concurrently.
func (w *MirrorWorker) SyncAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.syncTransactions(gctx) })
	g.Go(func() error { return w.syncBudgets(gctx) })
	return g.Wait()
}

// StartupSync mirrors everything once so the mirror catches up with
// saves made while the worker was down.
func (w *MirrorWorker) StartupSync(ctx context.Context) error {
	start := time.Now()
	if err := w.SyncAll(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed",
		log.FieldOperation, log.OpStartup,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (w *MirrorWorker) syncTransactions(ctx context.Context) error {
	ts := w.source.Load(ctx)
	if err := w.mirror.ReplaceTransactions(ctx, ts); err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}
	w.logger.DebugContext(ctx, "Mirrored transactions", log.FieldCount, len(ts))
	return nil
}

func (w *MirrorWorker) syncBudgets(ctx context.Context) error {
	bs := w.source.LoadBudgets(ctx)
	if err := w.mirror.ReplaceBudgets(ctx, bs); err != nil {
		return fmt.Errorf("mirror budgets: %w", err)
	}
	w.logger.DebugContext(ctx, "Mirrored budgets", log.FieldCount, len(bs))
	return nil
}

// Start begins the periodic resync loop. Returns an error if already running.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	if w.interval <= 0 {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Periodic resync started", "interval", w.interval)
	return nil
}

// Stop signals the loop and waits for it, or for ctx.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Mirror worker stopped")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}
}

func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *MirrorWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.SyncAll(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err)
			}
		}
	}
}
