package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/kv/memory"
	"fintrack/internal/storage"
)

func newServices(t *testing.T) (*TransactionService, *BudgetService, *storage.Gateway) {
	t.Helper()
	g := storage.NewGateway(memory.New(), nil, nil)
	ts := NewTransactionService(g, nil)
	n := 0
	ts.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return ts, NewBudgetService(g, g, nil), g
}

func input(amount, date, desc string, typ core.TransactionType, category string) core.TransactionInput {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.TransactionInput{
		Amount:      decimal.RequireFromString(amount),
		Date:        d,
		Description: desc,
		Type:        typ,
		Category:    category,
	}
}

func TestTransactionService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _, g := newServices(t)

	created, err := svc.Create(ctx, input("45.99", "2023-04-05", "  Grocery shopping ", core.Expense, "food"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", created.ID)
	}
	if created.Description != "Grocery shopping" {
		t.Errorf("description not trimmed: %q", created.Description)
	}

	if stored := g.Load(ctx); len(stored) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(stored))
	}

	got, err := svc.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("45.99")) {
		t.Errorf("Amount = %s", got.Amount)
	}
}

func TestTransactionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   core.TransactionInput
		want error
	}{
		{"zero amount", input("0", "2023-04-05", "x", core.Expense, "food"), core.ErrInvalidAmount},
		{"blank description", input("1", "2023-04-05", "   ", core.Expense, "food"), core.ErrEmptyDescription},
		{"bad type", input("1", "2023-04-05", "x", "transfer", "food"), core.ErrInvalidType},
		{"unknown category", input("1", "2023-04-05", "x", core.Expense, "crypto"), core.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, g := newServices(t)
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Create error = %v, want %v", err, tt.want)
			}
			if n := len(g.Load(context.Background())); n != 0 {
				t.Errorf("invalid input persisted %d transactions", n)
			}
		})
	}
}

func TestTransactionService_UpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServices(t)

	if _, err := svc.Create(ctx, input("10", "2023-04-05", "Coffee", core.Expense, "food")); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.Update(ctx, "id-1", input("12.50", "2023-04-06", "Coffee beans", core.Expense, "shopping"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != "id-1" || updated.Category != "shopping" {
		t.Errorf("unexpected update result %+v", updated)
	}

	list := svc.List(ctx)
	if len(list) != 1 || list[0].Description != "Coffee beans" {
		t.Errorf("List after update = %+v", list)
	}

	if _, err := svc.Update(ctx, "missing", input("1", "2023-04-05", "x", core.Expense, "food")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update unknown id error = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServices(t)

	for _, desc := range []string{"a", "b"} {
		if _, err := svc.Create(ctx, input("1", "2023-04-05", desc, core.Expense, "food")); err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.Delete(ctx, "id-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if list := svc.List(ctx); len(list) != 1 || list[0].ID != "id-2" {
		t.Errorf("List after delete = %+v", list)
	}
	if err := svc.Delete(ctx, "id-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServices(t)

	for _, d := range []string{"2023-04-01", "2023-04-15", "2023-04-08"} {
		if _, err := svc.Create(ctx, input("1", d, d, core.Expense, "food")); err != nil {
			t.Fatal(err)
		}
	}

	list := svc.List(ctx)
	want := []string{"2023-04-15", "2023-04-08", "2023-04-01"}
	for i, w := range want {
		if list[i].Date.String() != w {
			t.Errorf("list[%d].Date = %s, want %s", i, list[i].Date, w)
		}
	}
}

func TestTransactionService_Summary(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServices(t)
	svc.now = func() time.Time { return time.Date(2023, time.April, 20, 0, 0, 0, 0, time.UTC) }

	rows := []core.TransactionInput{
		input("3000", "2023-04-01", "Monthly Salary", core.Income, "income"),
		input("1200", "2023-04-02", "Rent", core.Expense, "housing"),
		input("45.99", "2023-04-05", "Grocery shopping", core.Expense, "food"),
		input("500", "2023-04-10", "Freelance work", core.Income, "income"),
		input("65.50", "2023-03-15", "Utilities", core.Expense, "utilities"),
	}
	for _, in := range rows {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	s := svc.Summary(ctx, time.Time{})
	if !s.Balance.Equal(decimal.RequireFromString("2188.51")) {
		t.Errorf("Balance = %s, want 2188.51", s.Balance)
	}
	if len(s.Monthly) != 6 || s.Monthly[5].Month != "Apr 2023" {
		t.Errorf("Monthly = %+v", s.Monthly)
	}
	if len(s.Recent) != RecentCount || s.Recent[0].Description != "Freelance work" {
		t.Errorf("Recent = %+v", s.Recent)
	}
}

func TestBudgetService(t *testing.T) {
	ctx := context.Background()
	txs, budgets, _ := newServices(t)

	if _, err := txs.Create(ctx, input("450", "2023-04-05", "Groceries", core.Expense, "food")); err != nil {
		t.Fatal(err)
	}
	if _, err := txs.Create(ctx, input("100", "2023-03-05", "Old groceries", core.Expense, "food")); err != nil {
		t.Fatal(err)
	}

	add := func(category, amount, month string) {
		t.Helper()
		if _, err := budgets.Add(ctx, core.Budget{Category: category, Amount: decimal.RequireFromString(amount), Month: month}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	add("food", "400", "2023-04")
	add("transportation", "100", "2023-04")
	add("food", "500", "2023-03")

	if _, err := budgets.Add(ctx, core.Budget{Category: "food", Amount: decimal.Zero, Month: "2023-04"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero budget error = %v", err)
	}

	insights := budgets.Insights(ctx)
	if len(insights) != 3 {
		t.Fatalf("got %d insights, want 3", len(insights))
	}
	if insights[0].Trend != core.TrendOver || !insights[0].Percentage.Equal(decimal.NewFromInt(100)) {
		t.Errorf("april food insight = %+v", insights[0])
	}
	if insights[2].Trend != core.TrendUnder || !insights[2].TotalSpent.Equal(decimal.NewFromInt(100)) {
		t.Errorf("march food insight = %+v", insights[2])
	}

	cmp := budgets.Comparison(ctx)
	if len(cmp) != 3 || !cmp[1].Actual.IsZero() {
		t.Errorf("Comparison = %+v", cmp)
	}

	removed, err := budgets.Remove(ctx, "food")
	if err != nil || removed != 2 {
		t.Fatalf("Remove = %d, %v; want 2, nil", removed, err)
	}
	if list := budgets.List(ctx); len(list) != 1 || list[0].Category != "transportation" {
		t.Errorf("List after remove = %+v", list)
	}
	if _, err := budgets.Remove(ctx, "food"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove missing error = %v", err)
	}
}
