package pipeline

import (
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/domain"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
)

// ToRows maps cleaned transactions onto the transactions table schema.
// A zero date (the unparsable-date sentinel) becomes a NULL column so
// such rows stay queryable for manual review.
func ToRows(userID, statementID string, txs []domain.Transaction) []*infra.TransactionRow {
	rows := make([]*infra.TransactionRow, 0, len(txs))
	now := time.Now()

	for _, tx := range txs {
		row := &infra.TransactionRow{
			TransactionID: uuid.NewString(),
			UserID:        userID,
			StatementID:   statementID,
			Description:   tx.Description,
			Amount:        tx.Amount.InexactFloat64(),
			Category:      tx.Category,
			Type:          tx.Type,
			CreatedTS:     now,
		}
		if !tx.Date.IsZero() {
			row.Date = bigquerylib.NullDate{Date: civil.DateOf(tx.Date), Valid: true}
		}
		if tx.Balance != nil {
			row.Balance = bigquerylib.NullFloat64{Float64: tx.Balance.InexactFloat64(), Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

// FromRows maps stored rows back to domain transactions for analytics
// and deduplication.
func FromRows(rows []*infra.TransactionRow) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := domain.Transaction{
			Description: row.Description,
			Amount:      decimal.NewFromFloat(row.Amount),
			Category:    row.Category,
			Type:        row.Type,
		}
		if row.Date.Valid {
			tx.Date = row.Date.Date.In(time.UTC)
		}
		if row.Balance.Valid {
			b := decimal.NewFromFloat(row.Balance.Float64)
			tx.Balance = &b
		}
		txs = append(txs, tx)
	}
	return txs
}
