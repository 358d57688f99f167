package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// UpsertBudgetTarget sets or updates a user's monthly target for one
// category.
func (c *Client) UpsertBudgetTarget(ctx context.Context, row *BudgetTargetRow) error {
	query := fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @user_id AS user_id, @category_name AS category_name, @monthly_target AS monthly_target) s
		ON t.user_id = s.user_id AND t.category_name = s.category_name
		WHEN MATCHED THEN
		  UPDATE SET monthly_target = s.monthly_target
		WHEN NOT MATCHED THEN
		  INSERT (user_id, category_name, monthly_target)
		  VALUES (s.user_id, s.category_name, s.monthly_target)
	`, c.dataset, budgetTargetsTable)

	err := c.runDML(ctx, query, []bigquery.QueryParameter{
		{Name: "user_id", Value: row.UserID},
		{Name: "category_name", Value: row.CategoryName},
		{Name: "monthly_target", Value: row.MonthlyTarget},
	})
	if err != nil {
		return fmt.Errorf("UpsertBudgetTarget: %w", err)
	}
	return nil
}

// ListBudgetTargets returns the user's budget targets.
func (c *Client) ListBudgetTargets(ctx context.Context, userID string) ([]*BudgetTargetRow, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT user_id, category_name, monthly_target
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY category_name
	`, c.dataset, budgetTargetsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListBudgetTargets: reading query: %w", err)
	}

	var rows []*BudgetTargetRow
	for {
		var row BudgetTargetRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBudgetTargets: iterating rows: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}
