package google

import (
	"strings"

	"fintrack/internal/core"
)

const (
	transactionColumns = 6
	budgetColumns      = 3
)

var (
	transactionHeader = []interface{}{"ID", "Date", "Description", "Type", "Category", "Amount"}
	budgetHeader      = []interface{}{"Category", "Month", "Amount"}
)

// transactionRows renders the header plus one row per transaction, in input order.
func transactionRows(ts []core.Transaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(ts)+1)
	rows = append(rows, transactionHeader)
	for _, t := range ts {
		rows = append(rows, []interface{}{
			sheetText(t.ID),
			t.Date.String(),
			sheetText(t.Description),
			string(t.Type),
			core.CategoryLabel(t.Category),
			t.Amount.StringFixed(2),
		})
	}
	return rows
}

func budgetRows(bs []core.Budget) [][]interface{} {
	rows := make([][]interface{}, 0, len(bs)+1)
	rows = append(rows, budgetHeader)
	for _, b := range bs {
		rows = append(rows, []interface{}{
			core.CategoryLabel(b.Category),
			b.Month,
			b.Amount.StringFixed(2),
		})
	}
	return rows
}

// sheetText keeps user text literal under USER_ENTERED input, where a leading
// formula character would otherwise be evaluated by Sheets.
func sheetText(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// columnLetter maps 1..26 to A..Z.
func columnLetter(n int) string {
	if n < 1 || n > 26 {
		return "Z"
	}
	return string(rune('A' + n - 1))
}
