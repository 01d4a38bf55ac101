// Package charts renders report charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fintrack/internal/core"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

var (
	incomeColor  = drawing.ColorFromHex("10b981")
	expenseColor = drawing.ColorFromHex("ef4444")
	budgetColor  = drawing.ColorFromHex("3b82f6")
)

func background() chart.Style {
	return chart.Style{
		Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		FillColor: chart.ColorWhite,
	}
}

func currencyFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return core.FormatCurrency(decimal.NewFromFloat(f).Round(0))
	}
	return ""
}

// MonthlyChart draws income and expense bars for each month of series.
func MonthlyChart(series []core.MonthlyData) ([]byte, error) {
	bars := make([]chart.Value, 0, len(series)*2)
	peak := 0.0
	for _, m := range series {
		in, out := m.Income.InexactFloat64(), m.Expenses.InexactFloat64()
		peak = max(peak, in, out)
		bars = append(bars,
			chart.Value{Label: m.Month + " in", Value: in, Style: barStyle(incomeColor)},
			chart.Value{Label: m.Month + " out", Value: out, Style: barStyle(expenseColor)},
		)
	}
	if peak <= 0 {
		return nil, ErrNoData
	}
	return renderBars("Monthly income and expenses", bars, peak)
}

// BudgetChart draws each budget next to the actual spending it covers.
func BudgetChart(items []core.BudgetComparison) ([]byte, error) {
	bars := make([]chart.Value, 0, len(items)*2)
	peak := 0.0
	for _, c := range items {
		label := core.CategoryLabel(c.Category)
		b, a := c.Budget.InexactFloat64(), c.Actual.InexactFloat64()
		peak = max(peak, b, a)
		bars = append(bars,
			chart.Value{Label: label + " budget", Value: b, Style: barStyle(budgetColor)},
			chart.Value{Label: label + " actual", Value: a, Style: barStyle(expenseColor)},
		)
	}
	if peak <= 0 {
		return nil, ErrNoData
	}
	return renderBars("Budget vs actual", bars, peak)
}

// CategoryChart draws the share of expenses per category.
func CategoryChart(items []core.CategoryAmount) ([]byte, error) {
	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		if !it.Amount.IsPositive() {
			continue
		}
		label := it.Label
		if label == "" {
			label = core.CategoryLabel(it.Category)
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s", label, core.FormatCurrency(it.Amount)),
			Value: it.Amount.InexactFloat64(),
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:      "Expenses by category",
		Width:      800,
		Height:     800,
		Values:     values,
		Background: background(),
	}

	buf := bytes.NewBuffer(nil)
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render category chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: c,
		FillColor:   c,
	}
}

func renderBars(title string, bars []chart.Value, peak float64) ([]byte, error) {
	graph := chart.BarChart{
		Title:      title,
		Width:      1200,
		Height:     600,
		BarWidth:   40,
		BarSpacing: 20,
		Background: background(),
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: currencyFormatter,
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
