package pipeline

import (
	"context"
	"errors"
	"testing"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dylanw/budget-tracker/internal/categories"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
)

type mockStore struct {
	objects map[string][]byte
}

func (m *mockStore) Upload(ctx context.Context, userID, filename string, content []byte) (string, error) {
	path := userID + "/" + filename
	m.objects[path] = content
	return path, nil
}

func (m *mockStore) List(ctx context.Context, userID string) ([]string, error) {
	var out []string
	for path := range m.objects {
		out = append(out, path)
	}
	return out, nil
}

func (m *mockStore) Download(ctx context.Context, objectPath string) ([]byte, error) {
	content, ok := m.objects[objectPath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return content, nil
}

type mockStatementRepo struct {
	inserted []*infra.StatementRow
}

func (m *mockStatementRepo) InsertStatement(ctx context.Context, row *infra.StatementRow) error {
	m.inserted = append(m.inserted, row)
	return nil
}

func (m *mockStatementRepo) ListStatements(ctx context.Context, userID string) ([]*infra.StatementRow, error) {
	return m.inserted, nil
}

func (m *mockStatementRepo) StatementExists(ctx context.Context, userID, filename string) (bool, error) {
	for _, row := range m.inserted {
		if row.OriginalFilename == filename {
			return true, nil
		}
	}
	return false, nil
}

type mockTransactionRepo struct {
	stored   []*infra.TransactionRow
	inserted []*infra.TransactionRow
}

func (m *mockTransactionRepo) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	m.inserted = append(m.inserted, rows...)
	m.stored = append(m.stored, rows...)
	return nil
}

func (m *mockTransactionRepo) ListTransactions(ctx context.Context, userID string) ([]*infra.TransactionRow, error) {
	return m.stored, nil
}

func (m *mockTransactionRepo) UpdateTransactionCategory(ctx context.Context, userID, transactionID, category string) error {
	return nil
}

type mockRuleRepo struct {
	rules map[string]string
}

func (m *mockRuleRepo) UpsertLearnedRule(ctx context.Context, row *infra.LearnedRuleRow) error {
	m.rules[row.Description] = row.Category
	return nil
}

func (m *mockRuleRepo) ListLearnedRules(ctx context.Context, userID string) (map[string]string, error) {
	return m.rules, nil
}

func newTestIngestor() (*Ingestor, *mockStore, *mockStatementRepo, *mockTransactionRepo, *mockRuleRepo) {
	store := &mockStore{objects: make(map[string][]byte)}
	statements := &mockStatementRepo{}
	transactions := &mockTransactionRepo{}
	rules := &mockRuleRepo{rules: make(map[string]string)}

	ing := &Ingestor{
		Store:        store,
		Statements:   statements,
		Transactions: transactions,
		Rules:        rules,
		Rulebook: []categories.KeywordRule{
			{Category: "Shopping", Keywords: []string{"Amazon"}},
			{Category: "Groceries", Keywords: []string{"Tesco"}},
		},
	}
	return ing, store, statements, transactions, rules
}

const novemberCSV = "Date,Description,Amount\n" +
	"10/11/2025,Amazon Prime,12.99\n" +
	"11/11/2025,TESCO STORES 2044,14.50\n"

func TestIngestStatement(t *testing.T) {
	ing, store, statements, transactions, _ := newTestIngestor()
	ctx := context.Background()

	store.objects["user1/november.csv"] = []byte(novemberCSV)

	stored, err := ing.IngestStatement(ctx, "user1", "user1/november.csv")
	if err != nil {
		t.Fatalf("IngestStatement failed: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d, want 2", stored)
	}

	if len(statements.inserted) != 1 {
		t.Fatalf("inserted %d statement rows, want 1", len(statements.inserted))
	}
	stmt := statements.inserted[0]
	if stmt.OriginalFilename != "november.csv" {
		t.Errorf("OriginalFilename = %q, want november.csv", stmt.OriginalFilename)
	}
	if stmt.TransactionCount != 2 {
		t.Errorf("TransactionCount = %d, want 2", stmt.TransactionCount)
	}

	if len(transactions.inserted) != 2 {
		t.Fatalf("inserted %d transaction rows, want 2", len(transactions.inserted))
	}
	prime := transactions.inserted[0]
	if prime.Category != "Shopping" {
		t.Errorf("Category = %q, want Shopping", prime.Category)
	}
	if prime.Amount != -12.99 {
		t.Errorf("Amount = %v, want -12.99", prime.Amount)
	}
	if prime.StatementID != stmt.StatementID {
		t.Errorf("StatementID = %q, want %q", prime.StatementID, stmt.StatementID)
	}
}

func TestIngestStatementSkipsStoredDuplicates(t *testing.T) {
	ing, store, _, transactions, _ := newTestIngestor()
	ctx := context.Background()

	store.objects["user1/november.csv"] = []byte(novemberCSV)
	// Overlapping export: one row already ingested, one new.
	store.objects["user1/overlap.csv"] = []byte("Date,Description,Amount\n" +
		"11/11/2025,TESCO STORES 2044,14.50\n" +
		"12/11/2025,TFL TRAVEL CH,2.80\n")

	if _, err := ing.IngestStatement(ctx, "user1", "user1/november.csv"); err != nil {
		t.Fatalf("first IngestStatement failed: %v", err)
	}

	stored, err := ing.IngestStatement(ctx, "user1", "user1/overlap.csv")
	if err != nil {
		t.Fatalf("second IngestStatement failed: %v", err)
	}
	if stored != 1 {
		t.Errorf("stored = %d, want 1 (duplicate row skipped)", stored)
	}
	if len(transactions.stored) != 3 {
		t.Errorf("total stored rows = %d, want 3", len(transactions.stored))
	}
}

func TestIngestStatementEmptyFile(t *testing.T) {
	ing, store, statements, _, _ := newTestIngestor()
	ctx := context.Background()

	store.objects["user1/empty.csv"] = []byte{}

	stored, err := ing.IngestStatement(ctx, "user1", "user1/empty.csv")
	if err != nil {
		t.Fatalf("IngestStatement failed: %v", err)
	}
	if stored != 0 {
		t.Errorf("stored = %d, want 0", stored)
	}
	if len(statements.inserted) != 0 {
		t.Errorf("inserted %d statement rows, want 0", len(statements.inserted))
	}
}

func TestIngestStatementUsesLearnedRules(t *testing.T) {
	ing, store, _, transactions, rules := newTestIngestor()
	ctx := context.Background()

	rules.rules["Amazon Prime"] = "Subscriptions"
	store.objects["user1/november.csv"] = []byte(novemberCSV)

	if _, err := ing.IngestStatement(ctx, "user1", "user1/november.csv"); err != nil {
		t.Fatalf("IngestStatement failed: %v", err)
	}

	if got := transactions.inserted[0].Category; got != "Subscriptions" {
		t.Errorf("Category = %q, want Subscriptions (learned rule)", got)
	}
}

func TestIngestStatementMissingObject(t *testing.T) {
	ing, _, _, _, _ := newTestIngestor()

	if _, err := ing.IngestStatement(context.Background(), "user1", "user1/gone.csv"); err == nil {
		t.Error("IngestStatement succeeded for a missing object")
	}
}

func TestRowsRoundTripKey(t *testing.T) {
	row := &infra.TransactionRow{
		TransactionID: "t1",
		Description:   "TESCO STORES 2044",
		Amount:        -14.5,
		Date:          bigquerylib.NullDate{Date: civil.Date{Year: 2025, Month: 11, Day: 11}, Valid: true},
		Category:      "Groceries",
		Type:          "Expense",
	}

	txs := FromRows([]*infra.TransactionRow{row})
	if len(txs) != 1 {
		t.Fatalf("FromRows returned %d transactions, want 1", len(txs))
	}

	// The key derived from a stored row must match the key of the same
	// transaction freshly parsed, or deduplication breaks.
	if got, want := txs[0].Key(), "2025-11-11|TESCO STORES 2044|-14.5"; got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}
