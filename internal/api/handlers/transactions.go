package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/api/middleware"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
)

// TransactionsHandler serves transaction queries and category
// corrections.
type TransactionsHandler struct {
	transactions infra.TransactionRepository
	rules        infra.RuleRepository
	log          zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(transactions infra.TransactionRepository, rules infra.RuleRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions, rules: rules, log: log}
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.transactions.ListTransactions(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": rows,
		"count":        len(rows),
	})
}

type updateCategoryRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateCategory handles PATCH /api/transactions/{id}/category. The new
// category is applied to the row, and when the request carries the
// transaction's description a learned rule is saved so future
// statements with the same description categorize themselves.
func (h *TransactionsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request, transactionID string) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "category is required")
		return
	}

	if err := h.transactions.UpdateTransactionCategory(ctx, userID, transactionID, req.Category); err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	if desc := strings.TrimSpace(req.Description); desc != "" {
		rule := &infra.LearnedRuleRow{UserID: userID, Description: desc, Category: req.Category}
		if err := h.rules.UpsertLearnedRule(ctx, rule); err != nil {
			// The row update already landed; a failed rule save only
			// affects future statements.
			h.log.Error().Err(err).Str("description", desc).Msg("Failed to save learned rule")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"category": req.Category,
	})
}
