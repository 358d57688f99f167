package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/analytics"
	"github.com/dylanw/budget-tracker/internal/api/middleware"
	"github.com/dylanw/budget-tracker/internal/domain"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/pipeline"
	"github.com/dylanw/budget-tracker/internal/statement"
)

// AnalyticsHandler serves the dashboard aggregates.
type AnalyticsHandler struct {
	transactions infra.TransactionRepository
	log          zerolog.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(transactions infra.TransactionRepository, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{transactions: transactions, log: log}
}

func (h *AnalyticsHandler) load(w http.ResponseWriter, r *http.Request) ([]domain.Transaction, bool) {
	ctx := r.Context()
	rows, err := h.transactions.ListTransactions(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return nil, false
	}
	return statement.FilterForBudget(pipeline.FromRows(rows)), true
}

// Dashboard handles GET /api/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.Dashboard(txs))
}

// SpendingByCategory handles GET /api/analytics/spending-by-category.
func (h *AnalyticsHandler) SpendingByCategory(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"spending": analytics.SpendingByCategory(txs),
	})
}

// MonthlyTrend handles GET /api/analytics/monthly-trend.
func (h *AnalyticsHandler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trend": analytics.MonthlyTrend(txs),
	})
}
