// Package analytics aggregates a user's transactions into dashboard
// metrics, spending breakdowns and budget comparisons. It works on
// in-memory transaction slices; loading them is the caller's concern.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/domain"
)

// monthOf reduces a date to its "YYYY-MM" label. Zero dates (unparsable
// sources) have no month and are excluded from monthly aggregates.
func monthOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01")
}

// LatestMonth returns the most recent month label present, or "" when no
// transaction has a usable date.
func LatestMonth(txs []domain.Transaction) string {
	latest := ""
	for _, tx := range txs {
		if m := monthOf(tx.Date); m > latest {
			latest = m
		}
	}
	return latest
}

// DashboardMetrics is the snapshot shown on the dashboard for the latest
// month.
type DashboardMetrics struct {
	LatestMonth      string  `json:"latest_month"`
	TotalSpent       float64 `json:"total_spent"`
	NetSaved         float64 `json:"net_saved"`
	TransactionCount int     `json:"transaction_count"`
}

// Dashboard computes the latest month's headline numbers. Spend counts
// expenses outside the Savings category; net saved is the money moved to
// Savings. Both are reported as positive magnitudes.
func Dashboard(txs []domain.Transaction) DashboardMetrics {
	month := LatestMonth(txs)
	metrics := DashboardMetrics{LatestMonth: month}
	if month == "" {
		return metrics
	}

	spent := decimal.Zero
	saved := decimal.Zero
	for _, tx := range txs {
		if monthOf(tx.Date) != month {
			continue
		}
		metrics.TransactionCount++
		switch {
		case tx.Category == domain.SavingsCategory:
			saved = saved.Sub(tx.Amount)
		case tx.IsExpense():
			spent = spent.Sub(tx.Amount)
		}
	}

	metrics.TotalSpent = spent.InexactFloat64()
	metrics.NetSaved = saved.InexactFloat64()
	return metrics
}

// CategorySpend is one slice of the spending pie.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// SpendingByCategory sums expense magnitudes per category across all
// transactions, sorted by category name for stable output.
func SpendingByCategory(txs []domain.Transaction) []CategorySpend {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Sub(tx.Amount)
	}

	out := make([]CategorySpend, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategorySpend{Category: cat, Amount: total.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// MonthSpend is one point of the monthly trend line.
type MonthSpend struct {
	Month    string  `json:"month"`
	Spending float64 `json:"spending"`
}

// MonthlyTrend sums expense magnitudes per month in chronological order.
// Transactions without a usable date are excluded.
func MonthlyTrend(txs []domain.Transaction) []MonthSpend {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		month := monthOf(tx.Date)
		if month == "" || !tx.IsExpense() {
			continue
		}
		totals[month] = totals[month].Sub(tx.Amount)
	}

	out := make([]MonthSpend, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthSpend{Month: month, Spending: total.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ComparisonRow is budget versus actual for one category in one month.
type ComparisonRow struct {
	Category    string  `json:"category"`
	Target      float64 `json:"monthly_target"`
	Spent       float64 `json:"spent"`
	Remaining   float64 `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
}

// Comparison computes budget versus actual spending for the latest
// month, one row per budget target. Categories with a target but no
// spending report zero spent.
func Comparison(targets map[string]float64, txs []domain.Transaction) (string, []ComparisonRow) {
	month := LatestMonth(txs)

	spent := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if monthOf(tx.Date) != month || !tx.IsExpense() {
			continue
		}
		spent[tx.Category] = spent[tx.Category].Sub(tx.Amount)
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]ComparisonRow, 0, len(names))
	for _, name := range names {
		target := targets[name]
		used := spent[name].InexactFloat64()
		row := ComparisonRow{
			Category:  name,
			Target:    target,
			Spent:     used,
			Remaining: target - used,
		}
		if target != 0 {
			row.PercentUsed = roundPercent(used / target * 100)
		}
		rows = append(rows, row)
	}
	return month, rows
}

func roundPercent(p float64) float64 {
	return decimal.NewFromFloat(p).Round(1).InexactFloat64()
}
