package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type BudgetStore interface {
	LoadBudgets(ctx context.Context) []core.Budget
	SaveBudgets(ctx context.Context, bs []core.Budget)
}

// BudgetService manages category budgets and compares them with spending.
type BudgetService struct {
	budgets      BudgetStore
	transactions TransactionStore
	logger       *log.Logger

	mu sync.Mutex
}

func NewBudgetService(budgets BudgetStore, transactions TransactionStore, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetService{
		budgets:      budgets,
		transactions: transactions,
		logger:       logger.WithComponent(log.ComponentService),
	}
}

func (s *BudgetService) List(ctx context.Context) []core.Budget {
	return s.budgets.LoadBudgets(ctx)
}

// Add appends b. Several budgets may exist for the same category.
func (s *BudgetService) Add(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.Category = strings.TrimSpace(b.Category)
	b.Month = strings.TrimSpace(b.Month)
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bs := append(s.budgets.LoadBudgets(ctx), b)
	s.budgets.SaveBudgets(ctx, bs)

	s.logger.InfoContext(ctx, "Budget added",
		log.FieldCategory, b.Category, log.FieldMonth, b.Month, log.FieldAmount, b.Amount.StringFixed(2))
	return b, nil
}

// Remove drops every budget for category and reports how many were removed.
func (s *BudgetService) Remove(ctx context.Context, category string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs := s.budgets.LoadBudgets(ctx)
	kept := make([]core.Budget, 0, len(bs))
	for _, b := range bs {
		if b.Category != category {
			kept = append(kept, b)
		}
	}
	removed := len(bs) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: no budget for %s", ErrNotFound, category)
	}

	s.budgets.SaveBudgets(ctx, kept)
	s.logger.InfoContext(ctx, "Budgets removed",
		log.FieldCategory, category, log.FieldCount, removed, log.FieldOperation, log.OpDelete)
	return removed, nil
}

func (s *BudgetService) Insights(ctx context.Context) []core.SpendingInsight {
	return aggregate.Insights(s.budgets.LoadBudgets(ctx), s.transactions.Load(ctx))
}

func (s *BudgetService) Comparison(ctx context.Context) []core.BudgetComparison {
	return aggregate.CompareBudgets(s.budgets.LoadBudgets(ctx), s.transactions.Load(ctx))
}
