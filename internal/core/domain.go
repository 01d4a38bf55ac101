package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxDescriptionLength is the longest description accepted at the input boundary.
const MaxDescriptionLength = 100

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type (
	TransactionType string

	// Date is a calendar date without time of day, stored at UTC midnight.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
	}

	// TransactionInput is a transaction as submitted, before an ID is assigned.
	TransactionInput struct {
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
	}

	// Budget is a spending ceiling for one category in one calendar month (YYYY-MM).
	Budget struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Month    string          `json:"month"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidCategory    = errors.New("unknown category")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses YYYY-MM-DD. A full RFC 3339 timestamp is also accepted
// and keeps the date part as written; any other trailing text is rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	datePart := s
	if len(s) > len(dateLayout) {
		if s[len(dateLayout)] != 'T' {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		datePart = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthKey returns the YYYY-MM key of the date.
func (d Date) MonthKey() string {
	return d.Format(monthLayout)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseMonth parses a YYYY-MM month key.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t, nil
}

// MonthKeyOf returns the YYYY-MM key of t.
func MonthKeyOf(t time.Time) string {
	return t.Format(monthLayout)
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Validate checks the input-boundary rules. Category must belong to Categories.
func (in TransactionInput) Validate() error {
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !in.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if !IsKnownCategory(in.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// WithID builds the stored transaction, trimming free text.
func (in TransactionInput) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
	}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if !IsKnownCategory(b.Category) {
		return ErrInvalidCategory
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, err := ParseMonth(b.Month); err != nil {
		return err
	}
	return nil
}
