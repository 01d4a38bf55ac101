package core

import "github.com/shopspring/decimal"

// MonthlyData holds income and expense totals for one calendar month.
type MonthlyData struct {
	Month    string          `json:"month"` // e.g. "Apr 2023"
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
}

type Trend string

const (
	TrendOver    Trend = "over"
	TrendOnTrack Trend = "on-track"
	TrendUnder   Trend = "under"
)

// SpendingInsight compares actual spending with one budget.
type SpendingInsight struct {
	Category   string          `json:"category"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Budget     decimal.Decimal `json:"budget"`
	Percentage decimal.Decimal `json:"percentage"` // clamped to 100
	Trend      Trend           `json:"trend"`
}

// BudgetComparison is one bar pair of the budget-vs-actual chart.
type BudgetComparison struct {
	Category string          `json:"category"`
	Budget   decimal.Decimal `json:"budget"`
	Actual   decimal.Decimal `json:"actual"`
}

// Summary is the dashboard view over the full transaction list.
type Summary struct {
	TotalIncome   decimal.Decimal  `json:"totalIncome"`
	TotalExpenses decimal.Decimal  `json:"totalExpenses"`
	Balance       decimal.Decimal  `json:"balance"`
	Monthly       []MonthlyData    `json:"monthly"`
	ByCategory    []CategoryAmount `json:"byCategory"`
	Recent        []Transaction    `json:"recent"`
}
