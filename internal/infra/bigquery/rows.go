// Package bigquery persists users' statements, transactions, learned
// rules and budget targets in a BigQuery dataset.
package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
)

// StatementRow is one uploaded statement file's metadata.
type StatementRow struct {
	StatementID      string    `bigquery:"statement_id"`
	UserID           string    `bigquery:"user_id"`
	ObjectPath       string    `bigquery:"object_path"`
	OriginalFilename string    `bigquery:"original_filename"`
	TransactionCount int64     `bigquery:"transaction_count"`
	UploadTS         time.Time `bigquery:"upload_ts"`
}

// TransactionRow is one cleaned transaction.
type TransactionRow struct {
	TransactionID string                `bigquery:"transaction_id"`
	UserID        string                `bigquery:"user_id"`
	StatementID   string                `bigquery:"statement_id"`
	Date          bigquery.NullDate     `bigquery:"txn_date"` // NULL when the source date failed to parse
	Description   string                `bigquery:"description"`
	Amount        float64               `bigquery:"amount"`
	Balance       bigquery.NullFloat64  `bigquery:"balance"`
	Category      string                `bigquery:"category"`
	Type          string                `bigquery:"txn_type"`
	CreatedTS     time.Time             `bigquery:"created_ts"`
}

// LearnedRuleRow is a per-user exact-description categorization override.
type LearnedRuleRow struct {
	UserID      string `bigquery:"user_id"`
	Description string `bigquery:"description"`
	Category    string `bigquery:"category"`
}

// BudgetTargetRow is a per-user monthly budget target for one category.
type BudgetTargetRow struct {
	UserID        string  `bigquery:"user_id"`
	CategoryName  string  `bigquery:"category_name"`
	MonthlyTarget float64 `bigquery:"monthly_target"`
}

// CategoryRow is a user-defined category.
type CategoryRow struct {
	UserID string `bigquery:"user_id"`
	Name   string `bigquery:"name"`
	Color  string `bigquery:"color"`
}

// StatementRepository stores uploaded statement metadata.
type StatementRepository interface {
	InsertStatement(ctx context.Context, row *StatementRow) error
	ListStatements(ctx context.Context, userID string) ([]*StatementRow, error)
	StatementExists(ctx context.Context, userID, filename string) (bool, error)
}

// TransactionRepository stores and queries cleaned transactions.
type TransactionRepository interface {
	InsertTransactions(ctx context.Context, rows []*TransactionRow) error
	ListTransactions(ctx context.Context, userID string) ([]*TransactionRow, error)
	UpdateTransactionCategory(ctx context.Context, userID, transactionID, category string) error
}

// RuleRepository stores per-user learned categorization rules.
type RuleRepository interface {
	UpsertLearnedRule(ctx context.Context, row *LearnedRuleRow) error
	ListLearnedRules(ctx context.Context, userID string) (map[string]string, error)
}

// BudgetRepository stores per-user budget targets.
type BudgetRepository interface {
	UpsertBudgetTarget(ctx context.Context, row *BudgetTargetRow) error
	ListBudgetTargets(ctx context.Context, userID string) ([]*BudgetTargetRow, error)
}

// CategoryRepository stores user-defined categories.
type CategoryRepository interface {
	InsertCategory(ctx context.Context, row *CategoryRow) error
	ListCategories(ctx context.Context, userID string) ([]*CategoryRow, error)
	DeleteCategory(ctx context.Context, userID, name string) error
}
