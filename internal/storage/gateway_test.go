package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/kv/memory"
)

type failingStore struct {
	getErr error
	setErr error
}

func (s failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, s.getErr
}

func (s failingStore) Set(context.Context, string, []byte) error {
	return s.setErr
}

type recordingNotifier struct {
	keys   []string
	counts []int
	err    error
}

func (n *recordingNotifier) NotifySaved(_ context.Context, key string, count int) error {
	n.keys = append(n.keys, key)
	n.counts = append(n.counts, count)
	return n.err
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:          "1",
		Amount:      decimal.RequireFromString("3000"),
		Date:        core.NewDate(2023, 4, 1),
		Description: "Monthly Salary",
		Type:        core.Income,
		Category:    "income",
	}
}

func TestLoadDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"corrupt json", "{not json"},
		{"object instead of array", `{"id":"1"}`},
		{"string value", `"hello"`},
		{"null", "null"},
		{"bad element", `[{"id":"1","amount":"3000","date":"not-a-date"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			if err := store.Set(context.Background(), TransactionsKey, []byte(tt.value)); err != nil {
				t.Fatal(err)
			}
			g := NewGateway(store, nil, nil)

			got := g.Load(context.Background())
			if got == nil {
				t.Fatal("Load returned nil, want empty slice")
			}
			if len(got) != 0 {
				t.Errorf("Load returned %d items, want 0", len(got))
			}
		})
	}
}

func TestLoadMissingKey(t *testing.T) {
	g := NewGateway(memory.New(), nil, nil)
	if got := g.Load(context.Background()); got == nil || len(got) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", got)
	}
	if got := g.LoadBudgets(context.Background()); got == nil || len(got) != 0 {
		t.Errorf("LoadBudgets() = %v, want empty non-nil slice", got)
	}
}

func TestLoadStoreError(t *testing.T) {
	g := NewGateway(failingStore{getErr: errors.New("unavailable")}, nil, nil)
	if got := g.Load(context.Background()); got == nil || len(got) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(memory.New(), nil, nil)

	want := sampleTransaction()
	g.Save(ctx, []core.Transaction{want})

	got := g.Load(ctx)
	if len(got) != 1 {
		t.Fatalf("Load returned %d items, want 1", len(got))
	}
	if got[0].ID != want.ID || !got[0].Amount.Equal(want.Amount) ||
		!got[0].Date.Equal(want.Date.Time) || got[0].Type != want.Type {
		t.Errorf("round trip mismatch: got %+v, want %+v", got[0], want)
	}
}

func TestBudgetsUseSeparateKey(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	g := NewGateway(store, nil, nil)

	g.SaveBudgets(ctx, []core.Budget{{Category: "food", Amount: decimal.NewFromInt(400), Month: "2023-04"}})

	if _, found, _ := store.Get(ctx, BudgetsKey); !found {
		t.Fatal("budgets not stored under budgets key")
	}
	if _, found, _ := store.Get(ctx, TransactionsKey); found {
		t.Fatal("budgets leaked into transactions key")
	}
	if got := g.LoadBudgets(ctx); len(got) != 1 || got[0].Category != "food" {
		t.Errorf("LoadBudgets() = %+v", got)
	}
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	NewGateway(store, nil, nil).Save(ctx, nil)

	raw, found, err := store.Get(ctx, TransactionsKey)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if string(raw) != "[]" {
		t.Errorf("stored %q, want []", raw)
	}
}

func TestSaveNotifies(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{err: errors.New("broker down")}
	g := NewGateway(memory.New(), n, nil)

	g.Save(ctx, []core.Transaction{sampleTransaction()})
	g.SaveBudgets(ctx, nil)

	if len(n.keys) != 2 || n.keys[0] != TransactionsKey || n.keys[1] != BudgetsKey {
		t.Fatalf("notified keys = %v", n.keys)
	}
	if n.counts[0] != 1 || n.counts[1] != 0 {
		t.Errorf("notified counts = %v", n.counts)
	}
}

func TestSaveFailureSkipsNotify(t *testing.T) {
	n := &recordingNotifier{}
	g := NewGateway(failingStore{setErr: errors.New("read only")}, n, nil)

	g.Save(context.Background(), []core.Transaction{sampleTransaction()})

	if len(n.keys) != 0 {
		t.Errorf("notifier called after failed save: %v", n.keys)
	}
}
