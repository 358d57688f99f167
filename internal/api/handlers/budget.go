package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/analytics"
	"github.com/dylanw/budget-tracker/internal/api/middleware"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/pipeline"
	"github.com/dylanw/budget-tracker/internal/statement"
)

// BudgetHandler serves budget targets and the target-vs-actual
// comparison.
type BudgetHandler struct {
	budgets      infra.BudgetRepository
	transactions infra.TransactionRepository
	log          zerolog.Logger
}

// NewBudgetHandler creates a budget handler.
func NewBudgetHandler(budgets infra.BudgetRepository, transactions infra.TransactionRepository, log zerolog.Logger) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, transactions: transactions, log: log}
}

// ListTargets handles GET /api/budget-targets.
func (h *BudgetHandler) ListTargets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.budgets.ListBudgetTargets(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list budget targets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list budget targets")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"targets": rows,
		"count":   len(rows),
	})
}

type setTargetRequest struct {
	CategoryName  string  `json:"category_name"`
	MonthlyTarget float64 `json:"monthly_target"`
}

// SetTarget handles POST /api/budget-targets, creating or replacing the
// target for one category.
func (h *BudgetHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	if req.CategoryName == "" {
		middleware.WriteError(w, http.StatusBadRequest, "category_name is required")
		return
	}
	if req.MonthlyTarget < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "monthly_target must not be negative")
		return
	}

	row := &infra.BudgetTargetRow{
		UserID:        middleware.UserID(ctx),
		CategoryName:  req.CategoryName,
		MonthlyTarget: req.MonthlyTarget,
	}
	if err := h.budgets.UpsertBudgetTarget(ctx, row); err != nil {
		h.log.Error().Err(err).Str("category", req.CategoryName).Msg("Failed to save budget target")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save budget target")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Comparison handles GET /api/budget-comparison: per-category actual
// spend for the latest month against the saved targets.
func (h *BudgetHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	targetRows, err := h.budgets.ListBudgetTargets(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list budget targets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list budget targets")
		return
	}
	targets := make(map[string]float64, len(targetRows))
	for _, row := range targetRows {
		targets[row.CategoryName] = row.MonthlyTarget
	}

	txRows, err := h.transactions.ListTransactions(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	txs := statement.FilterForBudget(pipeline.FromRows(txRows))
	month, rows := analytics.Comparison(targets, txs)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month":      month,
		"comparison": rows,
	})
}
