package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertTransactions inserts a batch of cleaned transactions.
func (c *Client) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := c.table(transactionsTable).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// ListTransactions returns all of a user's transactions, newest first.
// Rows with a NULL date (unparsable source date, kept for review) sort
// last.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]*TransactionRow, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT transaction_id, user_id, statement_id, txn_date, description,
		       amount, balance, category, txn_type, created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY txn_date DESC NULLS LAST
	`, c.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: reading query: %w", err)
	}

	var rows []*TransactionRow
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iterating rows: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// UpdateTransactionCategory reassigns one transaction's category. The
// user scope prevents touching another user's rows.
func (c *Client) UpdateTransactionCategory(ctx context.Context, userID, transactionID, category string) error {
	query := fmt.Sprintf(`
		UPDATE %s.%s
		SET category = @category
		WHERE user_id = @user_id AND transaction_id = @transaction_id
	`, c.dataset, transactionsTable)

	err := c.runDML(ctx, query, []bigquery.QueryParameter{
		{Name: "category", Value: category},
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	})
	if err != nil {
		return fmt.Errorf("UpdateTransactionCategory: %w", err)
	}
	return nil
}
