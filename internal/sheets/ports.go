package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror keeps an external copy of the stored collections.
	// Each call replaces the whole sheet.
	TransactionMirror interface {
		ReplaceTransactions(ctx context.Context, ts []core.Transaction) error
		ReplaceBudgets(ctx context.Context, bs []core.Budget) error
	}
)
