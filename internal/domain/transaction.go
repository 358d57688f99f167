package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types derived from the sign of the cleaned amount.
const (
	TypeExpense = "Expense"
	TypeIncome  = "Income"
)

// Uncategorized is assigned when no learned rule or keyword rule matches.
const Uncategorized = "Uncategorized"

// SavingsCategory marks money moved to savings. Rows in this category are
// kept by the budget retention filter regardless of sign.
const SavingsCategory = "Savings"

// Transaction is one cleaned statement row. Amounts are signed: negative is
// money out, positive is money in. CSV sources are sign-inverted at
// ingestion so both formats share this convention.
type Transaction struct {
	Date        time.Time // zero when the source date failed to parse; row kept for review
	Description string
	Amount      decimal.Decimal
	Balance     *decimal.Decimal // running balance after this row; nil for CSV sources
	Category    string
	Type        string // TypeExpense or TypeIncome
}

// Key identifies a transaction for deduplication across uploaded files.
// Re-uploading an overlapping statement period must not double-count rows.
func (t Transaction) Key() string {
	return t.Date.Format("2006-01-02") + "|" + t.Description + "|" + t.Amount.String()
}

// IsExpense reports whether money left the account.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}
