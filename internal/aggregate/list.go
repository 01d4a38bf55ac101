package aggregate

import (
	"sort"
	"strings"

	"fintrack/internal/core"
)

type SortField string

type SortOrder string

const (
	SortByDateField   SortField = "date"
	SortByAmount      SortField = "amount"
	SortByDescription SortField = "description"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Query narrows a transaction list. Type is "income", "expense", or empty/"all".
type Query struct {
	Search string
	Type   string
}

// SortByDate returns a copy ordered newest first. Equal dates keep their input order.
func SortByDate(ts []core.Transaction) []core.Transaction {
	return Sort(ts, SortByDateField, Descending)
}

// Recent returns at most n transactions, newest first.
func Recent(ts []core.Transaction, n int) []core.Transaction {
	sorted := SortByDate(ts)
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Filter keeps transactions whose description or category label contains
// q.Search (case-insensitive) and whose type matches q.Type.
func Filter(ts []core.Transaction, q Query) []core.Transaction {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if q.Type != "" && q.Type != "all" && string(t.Type) != q.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Description), search) &&
			!strings.Contains(strings.ToLower(core.CategoryLabel(t.Category)), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sort returns a stably sorted copy. Unknown fields sort by date.
func Sort(ts []core.Transaction, field SortField, order SortOrder) []core.Transaction {
	out := make([]core.Transaction, len(ts))
	copy(out, ts)

	cmp := func(a, b core.Transaction) int {
		switch field {
		case SortByAmount:
			return a.Amount.Cmp(b.Amount)
		case SortByDescription:
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		default:
			return a.Date.Compare(b.Date.Time)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if order == Ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}
