package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var (
	hundred      = decimal.NewFromInt(100)
	onTrackFloor = decimal.NewFromInt(80)
)

// SpentInMonth sums expenses of category whose date falls in month (YYYY-MM).
func SpentInMonth(ts []core.Transaction, category, month string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range ts {
		if t.Type == core.Expense && t.Category == category && strings.HasPrefix(t.Date.String(), month) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CompareBudgets pairs every budget with the actual spending it covers.
func CompareBudgets(budgets []core.Budget, ts []core.Transaction) []core.BudgetComparison {
	out := make([]core.BudgetComparison, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, core.BudgetComparison{
			Category: b.Category,
			Budget:   b.Amount,
			Actual:   SpentInMonth(ts, b.Category, b.Month),
		})
	}
	return out
}

// Insights reports budget usage per budget. Percentage is clamped to 100;
// the trend is derived from the unclamped value.
func Insights(budgets []core.Budget, ts []core.Transaction) []core.SpendingInsight {
	out := make([]core.SpendingInsight, 0, len(budgets))
	for _, b := range budgets {
		spent := SpentInMonth(ts, b.Category, b.Month)

		pct := decimal.Zero
		if b.Amount.IsPositive() {
			pct = spent.Div(b.Amount).Mul(hundred)
		}

		trend := core.TrendUnder
		switch {
		case pct.GreaterThan(hundred):
			trend = core.TrendOver
		case pct.GreaterThan(onTrackFloor):
			trend = core.TrendOnTrack
		}

		out = append(out, core.SpendingInsight{
			Category:   b.Category,
			TotalSpent: spent,
			Budget:     b.Amount,
			Percentage: decimal.Min(pct, hundred).Round(2),
			Trend:      trend,
		})
	}
	return out
}
