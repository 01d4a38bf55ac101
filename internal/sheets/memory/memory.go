package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Mirror keeps the last mirrored snapshot in process. It stands in for
// Google Sheets when no spreadsheet is configured.
type Mirror struct {
	mu           sync.Mutex
	transactions []core.Transaction
	budgets      []core.Budget
	writes       int
}

var _ ports.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) ReplaceTransactions(_ context.Context, ts []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append([]core.Transaction(nil), ts...)
	m.writes++
	return nil
}

func (m *Mirror) ReplaceBudgets(_ context.Context, bs []core.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets = append([]core.Budget(nil), bs...)
	m.writes++
	return nil
}

// Transactions returns a copy of the last mirrored transactions.
func (m *Mirror) Transactions() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.transactions...)
}

func (m *Mirror) Budgets() []core.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Budget(nil), m.budgets...)
}

// Writes counts Replace calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
