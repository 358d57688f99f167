package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertStatement records one uploaded statement's metadata.
func (c *Client) InsertStatement(ctx context.Context, row *StatementRow) error {
	if err := c.table(statementsTable).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertStatement: inserting row: %w", err)
	}
	return nil
}

// ListStatements returns a user's uploaded statements, newest first.
func (c *Client) ListStatements(ctx context.Context, userID string) ([]*StatementRow, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT statement_id, user_id, object_path, original_filename,
		       transaction_count, upload_ts
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY upload_ts DESC
	`, c.dataset, statementsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListStatements: reading query: %w", err)
	}

	var rows []*StatementRow
	for {
		var row StatementRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListStatements: iterating rows: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// StatementExists reports whether the user already uploaded a file with
// this name. Re-uploads are rejected at the API boundary.
func (c *Client) StatementExists(ctx context.Context, userID, filename string) (bool, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT COUNT(*) AS n
		FROM %s.%s
		WHERE user_id = @user_id AND original_filename = @filename
	`, c.dataset, statementsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "filename", Value: filename},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("StatementExists: reading query: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil {
		return false, fmt.Errorf("StatementExists: iterating rows: %w", err)
	}
	return row.N > 0, nil
}
