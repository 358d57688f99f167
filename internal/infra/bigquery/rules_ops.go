package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// UpsertLearnedRule inserts or replaces a user's learned rule for an
// exact description. Created when a user manually recategorizes a
// transaction; the rule applies on every later parse.
func (c *Client) UpsertLearnedRule(ctx context.Context, row *LearnedRuleRow) error {
	query := fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @user_id AS user_id, @description AS description, @category AS category) s
		ON t.user_id = s.user_id AND t.description = s.description
		WHEN MATCHED THEN
		  UPDATE SET category = s.category
		WHEN NOT MATCHED THEN
		  INSERT (user_id, description, category)
		  VALUES (s.user_id, s.description, s.category)
	`, c.dataset, rulesTable)

	err := c.runDML(ctx, query, []bigquery.QueryParameter{
		{Name: "user_id", Value: row.UserID},
		{Name: "description", Value: strings.TrimSpace(row.Description)},
		{Name: "category", Value: row.Category},
	})
	if err != nil {
		return fmt.Errorf("UpsertLearnedRule: %w", err)
	}
	return nil
}

// ListLearnedRules returns the user's learned rules as a
// description-to-category map, the shape the category resolver consumes.
func (c *Client) ListLearnedRules(ctx context.Context, userID string) (map[string]string, error) {
	q := c.bq.Query(fmt.Sprintf(`
		SELECT user_id, description, category
		FROM %s.%s
		WHERE user_id = @user_id
	`, c.dataset, rulesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListLearnedRules: reading query: %w", err)
	}

	rules := make(map[string]string)
	for {
		var row LearnedRuleRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListLearnedRules: iterating rows: %w", err)
		}
		rules[row.Description] = row.Category
	}
	return rules, nil
}
