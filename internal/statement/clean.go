package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/categories"
	"github.com/dylanw/budget-tracker/internal/domain"
)

// Source identifies which adapter produced a raw row and therefore which
// date layout applies.
type Source int

const (
	SourceChasePDF Source = iota
	SourceAmexCSV
)

func (s Source) dateLayout() string {
	if s == SourceAmexCSV {
		return "02/01/2006"
	}
	return "02 Jan 2006"
}

// parseMoney coerces a raw currency token to a decimal. The currency
// symbol and thousands separators are stripped first. Rows that fail
// coercion become zero and are dropped by clean.
func parseMoney(raw string) decimal.Decimal {
	s := strings.ReplaceAll(raw, "£", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// clean turns the raw rows of one file into finished transactions.
//
// Zero amounts are extraction artifacts, not real zero-value transactions,
// and are dropped. Unparsable dates keep the row with a zero time.Time so
// a real transaction is never silently discarded; callers flag such rows
// for manual review.
func clean(raw []pending, src Source, resolver *categories.Resolver) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(raw))

	for _, row := range raw {
		amount := parseMoney(row.Amount)
		if amount.IsZero() {
			continue
		}

		var balance *decimal.Decimal
		if row.Balance != "" {
			b := parseMoney(row.Balance)
			balance = &b
		}

		date, err := time.Parse(src.dateLayout(), row.Date)
		if err != nil {
			date = time.Time{}
		}

		desc := strings.TrimSpace(row.Description)
		tx := domain.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Balance:     balance,
			Category:    resolver.Categorize(desc),
		}
		if tx.IsExpense() {
			tx.Type = domain.TypeExpense
		} else {
			tx.Type = domain.TypeIncome
		}
		out = append(out, tx)
	}

	return out
}

// Merge concatenates per-file transaction lists and collapses rows with
// identical (date, description, amount). First occurrence wins, so output
// order follows input order.
func Merge(batches ...[]domain.Transaction) []domain.Transaction {
	seen := make(map[string]struct{})
	var out []domain.Transaction
	for _, batch := range batches {
		for _, tx := range batch {
			key := tx.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tx)
		}
	}
	return out
}

// FilterForBudget applies the retention policy for budgeting views: keep
// every Savings row regardless of sign, plus every expense. Ordinary
// income (salary, refunds) is excluded from spend calculations.
func FilterForBudget(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Category == domain.SavingsCategory || tx.IsExpense() {
			out = append(out, tx)
		}
	}
	return out
}
