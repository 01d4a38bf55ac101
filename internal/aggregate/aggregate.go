// Package aggregate computes totals, balances and bucketed series over a
// transaction list. Every function is pure: it neither mutates its input nor
// keeps state between calls.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// SeriesLength is the number of months returned by MonthlySeries.
const SeriesLength = 6

const monthLabelLayout = "Jan 2006"

// TotalIncome sums the amounts of income transactions.
func TotalIncome(ts []core.Transaction) decimal.Decimal {
	return sumByType(ts, core.Income)
}

// TotalExpenses sums the amounts of expense transactions.
func TotalExpenses(ts []core.Transaction) decimal.Decimal {
	return sumByType(ts, core.Expense)
}

// Balance is TotalIncome minus TotalExpenses and may be negative.
func Balance(ts []core.Transaction) decimal.Decimal {
	return TotalIncome(ts).Sub(TotalExpenses(ts))
}

func sumByType(ts []core.Transaction, typ core.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range ts {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// MonthlySeries returns exactly SeriesLength entries in chronological order,
// ending with the month of ref. Transactions are matched by year and month;
// those outside the window are ignored.
func MonthlySeries(ts []core.Transaction, ref time.Time) []core.MonthlyData {
	series := make([]core.MonthlyData, SeriesLength)
	index := make(map[string]int, SeriesLength)
	for i := 0; i < SeriesLength; i++ {
		first := time.Date(ref.Year(), ref.Month()-time.Month(SeriesLength-1-i), 1, 0, 0, 0, 0, time.UTC)
		series[i] = core.MonthlyData{
			Month:    first.Format(monthLabelLayout),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		index[core.MonthKeyOf(first)] = i
	}

	for _, t := range ts {
		i, ok := index[t.Date.MonthKey()]
		if !ok {
			continue
		}
		if t.Type == core.Expense {
			series[i].Expenses = series[i].Expenses.Add(t.Amount)
		} else {
			series[i].Income = series[i].Income.Add(t.Amount)
		}
	}
	return series
}

// GroupByCategory sums expense amounts per category. Income is never counted
// and categories without expenses are absent from the result.
func GroupByCategory(ts []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range ts {
		if t.Type != core.Expense {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// CategoryBreakdown is GroupByCategory as a slice ordered by amount, largest first.
func CategoryBreakdown(ts []core.Transaction) []core.CategoryAmount {
	groups := GroupByCategory(ts)
	out := make([]core.CategoryAmount, 0, len(groups))
	for cat, amount := range groups {
		out = append(out, core.CategoryAmount{
			Category: cat,
			Label:    core.CategoryLabel(cat),
			Amount:   amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Summarize builds the dashboard view for the month of ref.
func Summarize(ts []core.Transaction, ref time.Time, recent int) core.Summary {
	return core.Summary{
		TotalIncome:   TotalIncome(ts),
		TotalExpenses: TotalExpenses(ts),
		Balance:       Balance(ts),
		Monthly:       MonthlySeries(ts, ref),
		ByCategory:    CategoryBreakdown(ts),
		Recent:        Recent(ts, recent),
	}
}
