package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/api/middleware"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/jobs"
)

type mockStore struct {
	objects map[string][]byte
}

func (m *mockStore) Upload(ctx context.Context, userID, filename string, content []byte) (string, error) {
	path := userID + "/" + filename
	m.objects[path] = content
	return path, nil
}

func (m *mockStore) List(ctx context.Context, userID string) ([]string, error) { return nil, nil }

func (m *mockStore) Download(ctx context.Context, objectPath string) ([]byte, error) {
	content, ok := m.objects[objectPath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return content, nil
}

type mockStatementRepo struct {
	existing []string
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
	for _, name := range m.existing {
		if name == filename {
			return true, nil
		}
	}
	return false, nil
}

type mockTransactionRepo struct {
	rows            []*infra.TransactionRow
	updatedID       string
	updatedCategory string
}

func (m *mockTransactionRepo) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *mockTransactionRepo) ListTransactions(ctx context.Context, userID string) ([]*infra.TransactionRow, error) {
	return m.rows, nil
}

func (m *mockTransactionRepo) UpdateTransactionCategory(ctx context.Context, userID, transactionID, category string) error {
	m.updatedID = transactionID
	m.updatedCategory = category
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

type mockBudgetRepo struct {
	targets []*infra.BudgetTargetRow
}

func (m *mockBudgetRepo) UpsertBudgetTarget(ctx context.Context, row *infra.BudgetTargetRow) error {
	m.targets = append(m.targets, row)
	return nil
}

func (m *mockBudgetRepo) ListBudgetTargets(ctx context.Context, userID string) ([]*infra.BudgetTargetRow, error) {
	return m.targets, nil
}

type mockPublisher struct {
	published []*jobs.ParseStatementJob
}

func (m *mockPublisher) PublishParseStatement(ctx context.Context, job *jobs.ParseStatementJob) error {
	if job.JobID == "" {
		job.JobID = "job-1"
	}
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// authed wraps a handler the way the server does, so middleware.UserID
// resolves inside it.
func authed(h http.HandlerFunc) http.Handler {
	return middleware.Auth(middleware.StaticVerifier{"tok": "user1"})(h)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	store := &mockStore{objects: make(map[string][]byte)}
	statements := &mockStatementRepo{}
	publisher := &mockPublisher{}
	h := NewUploadHandler(store, statements, publisher, nil, zerolog.Nop())

	body, contentType := multipartBody(t, "file", "november.csv", "Date,Description,Amount\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(h.Upload).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(publisher.published))
	}
	job := publisher.published[0]
	if job.UserID != "user1" || job.ObjectPath != "user1/november.csv" {
		t.Errorf("job = %+v, want user1/november.csv for user1", job)
	}
	if _, ok := store.objects["user1/november.csv"]; !ok {
		t.Error("statement bytes were not stored")
	}
}

func TestUploadDuplicateFilename(t *testing.T) {
	store := &mockStore{objects: make(map[string][]byte)}
	statements := &mockStatementRepo{existing: []string{"november.csv"}}
	publisher := &mockPublisher{}
	h := NewUploadHandler(store, statements, publisher, nil, zerolog.Nop())

	body, contentType := multipartBody(t, "file", "november.csv", "content")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(h.Upload).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if len(publisher.published) != 0 {
		t.Errorf("published %d jobs, want 0", len(publisher.published))
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	h := NewUploadHandler(&mockStore{objects: map[string][]byte{}}, &mockStatementRepo{}, &mockPublisher{}, nil, zerolog.Nop())

	body, contentType := multipartBody(t, "file", "statement.xlsx", "content")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(h.Upload).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateCategory(t *testing.T) {
	transactions := &mockTransactionRepo{}
	rules := &mockRuleRepo{rules: make(map[string]string)}
	h := NewTransactionsHandler(transactions, rules, zerolog.Nop())

	payload := `{"category":"Transport","description":"TESCO PETROL 0443"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/t1/category", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(func(w http.ResponseWriter, r *http.Request) {
		h.UpdateCategory(w, r, "t1")
	}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if transactions.updatedID != "t1" || transactions.updatedCategory != "Transport" {
		t.Errorf("updated %q to %q, want t1 to Transport", transactions.updatedID, transactions.updatedCategory)
	}
	if got := rules.rules["TESCO PETROL 0443"]; got != "Transport" {
		t.Errorf("learned rule = %q, want Transport", got)
	}
}

func TestUpdateCategoryWithoutCategory(t *testing.T) {
	h := NewTransactionsHandler(&mockTransactionRepo{}, &mockRuleRepo{rules: map[string]string{}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/t1/category", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(func(w http.ResponseWriter, r *http.Request) {
		h.UpdateCategory(w, r, "t1")
	}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBudgetComparison(t *testing.T) {
	budgets := &mockBudgetRepo{targets: []*infra.BudgetTargetRow{
		{UserID: "user1", CategoryName: "Groceries", MonthlyTarget: 200},
	}}
	transactions := &mockTransactionRepo{rows: []*infra.TransactionRow{
		{
			TransactionID: "t1",
			Description:   "TESCO STORES",
			Amount:        -150,
			Date:          bigquerylib.NullDate{Date: civil.Date{Year: 2025, Month: 11, Day: 5}, Valid: true},
			Category:      "Groceries",
			Type:          "Expense",
		},
	}}
	h := NewBudgetHandler(budgets, transactions, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/budget-comparison", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(h.Comparison).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp struct {
		Month      string `json:"month"`
		Comparison []struct {
			Category    string  `json:"category"`
			Spent       float64 `json:"spent"`
			Remaining   float64 `json:"remaining"`
			PercentUsed float64 `json:"percent_used"`
		} `json:"comparison"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}

	if resp.Month != "2025-11" {
		t.Errorf("month = %q, want 2025-11", resp.Month)
	}
	if len(resp.Comparison) != 1 {
		t.Fatalf("comparison has %d rows, want 1", len(resp.Comparison))
	}
	row := resp.Comparison[0]
	if row.Spent != 150 || row.Remaining != 50 || row.PercentUsed != 75 {
		t.Errorf("row = %+v, want Spent 150, Remaining 50, PercentUsed 75", row)
	}
}

func TestSetTargetRejectsNegative(t *testing.T) {
	h := NewBudgetHandler(&mockBudgetRepo{}, &mockTransactionRepo{}, zerolog.Nop())

	payload := `{"category_name":"Groceries","monthly_target":-5}`
	req := httptest.NewRequest(http.MethodPost, "/api/budget-targets", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	authed(h.SetTarget).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
