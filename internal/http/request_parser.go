package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// amountField accepts a JSON number or a string such as "12,50".
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
	default:
		*a = amountField(b)
	}
	return nil
}

type transactionRequest struct {
	Amount      amountField `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
}

// toInput converts and validates the request. Errors are core validation errors.
func (req transactionRequest) toInput() (core.TransactionInput, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.TransactionInput{}, err
	}
	if strings.TrimSpace(req.Date) == "" {
		return core.TransactionInput{}, core.ErrInvalidDate
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.TransactionInput{}, err
	}

	in := core.TransactionInput{
		Amount:      amount,
		Date:        date,
		Description: sanitizeInput(req.Description),
		Type:        core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
	}
	if err := in.Validate(); err != nil {
		return core.TransactionInput{}, err
	}
	return in, nil
}

type budgetRequest struct {
	Category string      `json:"category"`
	Amount   amountField `json:"amount"`
	Month    string      `json:"month"`
}

func (req budgetRequest) toBudget() (core.Budget, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Amount:   amount,
		Month:    strings.TrimSpace(req.Month),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// decodeJSONBody decodes exactly one JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON object", errMalformedBody)
	}
	return nil
}

// parseMonthQuery reads ?month=YYYY-MM. Absent means the zero time.
func parseMonthQuery(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return time.Time{}, nil
	}
	return core.ParseMonth(v)
}

// listParams holds the list filter and ordering taken from the query string.
type listParams struct {
	Query aggregate.Query
	Field aggregate.SortField
	Order aggregate.SortOrder
}

func parseListParams(r *http.Request) (listParams, error) {
	q := r.URL.Query()
	p := listParams{
		Query: aggregate.Query{
			Search: sanitizeInput(q.Get("search")),
			Type:   strings.ToLower(strings.TrimSpace(q.Get("type"))),
		},
		Field: aggregate.SortField(strings.ToLower(strings.TrimSpace(q.Get("sort")))),
		Order: aggregate.SortOrder(strings.ToLower(strings.TrimSpace(q.Get("order")))),
	}

	switch p.Query.Type {
	case "", "all", string(core.Income), string(core.Expense):
	default:
		return listParams{}, fmt.Errorf("invalid type filter %q", p.Query.Type)
	}

	switch p.Field {
	case "":
		p.Field = aggregate.SortByDateField
	case aggregate.SortByDateField, aggregate.SortByAmount, aggregate.SortByDescription:
	default:
		return listParams{}, fmt.Errorf("invalid sort field %q", p.Field)
	}

	switch p.Order {
	case "":
		p.Order = aggregate.Descending
	case aggregate.Ascending, aggregate.Descending:
	default:
		return listParams{}, fmt.Errorf("invalid sort order %q", p.Order)
	}
	return p, nil
}
