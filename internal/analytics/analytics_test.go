package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/domain"
)

func tx(date string, desc, category, amount string) domain.Transaction {
	var d time.Time
	if date != "" {
		var err error
		d, err = time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
	}
	a := decimal.RequireFromString(amount)
	t := domain.Transaction{Date: d, Description: desc, Category: category, Amount: a}
	if t.IsExpense() {
		t.Type = domain.TypeExpense
	} else {
		t.Type = domain.TypeIncome
	}
	return t
}

func TestLatestMonth(t *testing.T) {
	txs := []domain.Transaction{
		tx("2025-10-05", "Tesco", "Groceries", "-10"),
		tx("2025-11-01", "Tesco", "Groceries", "-20"),
		tx("", "No date", "Uncategorized", "-5"),
	}
	if got := LatestMonth(txs); got != "2025-11" {
		t.Errorf("LatestMonth = %q, want 2025-11", got)
	}

	if got := LatestMonth(nil); got != "" {
		t.Errorf("LatestMonth(nil) = %q, want empty", got)
	}
}

func TestDashboard(t *testing.T) {
	txs := []domain.Transaction{
		tx("2025-11-01", "Tesco", "Groceries", "-14.50"),
		tx("2025-11-02", "TFL", "Transport", "-2.80"),
		tx("2025-11-03", "Chase Saver", "Savings", "-100"),
		tx("2025-11-04", "Chase Saver withdrawal", "Savings", "25"),
		tx("2025-10-20", "Last month", "Groceries", "-99"),
	}

	got := Dashboard(txs)

	if got.LatestMonth != "2025-11" {
		t.Errorf("LatestMonth = %q, want 2025-11", got.LatestMonth)
	}
	if got.TotalSpent != 17.3 {
		t.Errorf("TotalSpent = %v, want 17.3", got.TotalSpent)
	}
	// 100 moved in, 25 moved back out.
	if got.NetSaved != 75 {
		t.Errorf("NetSaved = %v, want 75", got.NetSaved)
	}
	if got.TransactionCount != 4 {
		t.Errorf("TransactionCount = %d, want 4", got.TransactionCount)
	}
}

func TestDashboardNoDates(t *testing.T) {
	got := Dashboard([]domain.Transaction{tx("", "No date", "Groceries", "-5")})
	if got.LatestMonth != "" || got.TransactionCount != 0 {
		t.Errorf("Dashboard = %+v, want empty metrics", got)
	}
}

func TestSpendingByCategory(t *testing.T) {
	txs := []domain.Transaction{
		tx("2025-11-01", "Tesco", "Groceries", "-14.50"),
		tx("2025-11-05", "Sainsburys", "Groceries", "-5.50"),
		tx("2025-11-02", "TFL", "Transport", "-2.80"),
		tx("2025-11-03", "Salary", "Uncategorized", "2500"),
	}

	got := SpendingByCategory(txs)

	want := []CategorySpend{
		{Category: "Groceries", Amount: 20},
		{Category: "Transport", Amount: 2.8},
	}
	if len(got) != len(want) {
		t.Fatalf("SpendingByCategory returned %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMonthlyTrend(t *testing.T) {
	txs := []domain.Transaction{
		tx("2025-10-05", "Tesco", "Groceries", "-10"),
		tx("2025-11-01", "Tesco", "Groceries", "-20"),
		tx("2025-11-15", "TFL", "Transport", "-5"),
		tx("", "No date", "Groceries", "-99"),
	}

	got := MonthlyTrend(txs)

	want := []MonthSpend{
		{Month: "2025-10", Spending: 10},
		{Month: "2025-11", Spending: 25},
	}
	if len(got) != len(want) {
		t.Fatalf("MonthlyTrend returned %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestComparison(t *testing.T) {
	targets := map[string]float64{
		"Groceries": 200,
		"Transport": 50,
		"Dining":    0,
	}
	txs := []domain.Transaction{
		tx("2025-11-01", "Tesco", "Groceries", "-150"),
		tx("2025-10-01", "Tesco", "Groceries", "-999"),
	}

	month, rows := Comparison(targets, txs)

	if month != "2025-11" {
		t.Errorf("month = %q, want 2025-11", month)
	}
	if len(rows) != 3 {
		t.Fatalf("Comparison returned %d rows, want 3: %+v", len(rows), rows)
	}

	groceries := rows[1]
	if groceries.Category != "Groceries" {
		t.Fatalf("rows are not sorted by category: %+v", rows)
	}
	if groceries.Spent != 150 || groceries.Remaining != 50 || groceries.PercentUsed != 75 {
		t.Errorf("Groceries row = %+v, want Spent 150, Remaining 50, PercentUsed 75", groceries)
	}

	transport := rows[2]
	if transport.Spent != 0 || transport.Remaining != 50 {
		t.Errorf("Transport row = %+v, want zero spend", transport)
	}

	dining := rows[0]
	if dining.PercentUsed != 0 {
		t.Errorf("zero-target PercentUsed = %v, want 0", dining.PercentUsed)
	}
}
