package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// Table names inside the configured dataset.
const (
	statementsTable    = "statements"
	transactionsTable  = "transactions"
	rulesTable         = "rules"
	budgetTargetsTable = "budget_targets"
	categoriesTable    = "categories"
)

// Client implements the repository interfaces over a shared BigQuery
// connection. It should be closed when no longer needed.
type Client struct {
	bq      *bigquery.Client
	dataset string
}

// NewClient connects to the given project and dataset.
func NewClient(ctx context.Context, project, dataset string) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewClient: bigquery client: %w", err)
	}
	return &Client{bq: bq, dataset: dataset}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.bq != nil {
		return c.bq.Close()
	}
	return nil
}

func (c *Client) table(name string) *bigquery.Table {
	return c.bq.Dataset(c.dataset).Table(name)
}

var (
	_ StatementRepository   = (*Client)(nil)
	_ TransactionRepository = (*Client)(nil)
	_ RuleRepository        = (*Client)(nil)
	_ BudgetRepository      = (*Client)(nil)
	_ CategoryRepository    = (*Client)(nil)
)

// runDML executes a parameterized DML statement and waits for completion.
func (c *Client) runDML(ctx context.Context, query string, params []bigquery.QueryParameter) error {
	q := c.bq.Query(query)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
