package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertCategory adds a user-defined category.
func (c *Client) InsertCategory(ctx context.Context, row *CategoryRow) error {
	if err := c.table(categoriesTable).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertCategory: inserting row: %w", err)
	}
	return nil
}

// ListCategories returns the user's categories.
func (c *Client) ListCategories(ctx context.Context, userID string) ([]*CategoryRow, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT user_id, name, color
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY name
	`, c.dataset, categoriesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: reading query: %w", err)
	}

	var rows []*CategoryRow
	for {
		var row CategoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iterating rows: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// DeleteCategory removes a category and its budget target.
func (c *Client) DeleteCategory(ctx context.Context, userID, name string) error {
	for _, table := range []string{categoriesTable, budgetTargetsTable} {
		column := "name"
		if table == budgetTargetsTable {
			column = "category_name"
		}
		query := fmt.Sprintf(`
			DELETE FROM %s.%s
			WHERE user_id = @user_id AND %s = @name
		`, c.dataset, table, column)

		err := c.runDML(ctx, query, []bigquery.QueryParameter{
			{Name: "user_id", Value: userID},
			{Name: "name", Value: name},
		})
		if err != nil {
			return fmt.Errorf("DeleteCategory: %s: %w", table, err)
		}
	}
	return nil
}
