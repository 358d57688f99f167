package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/api/middleware"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
)

// CategoriesHandler serves user-defined categories.
type CategoriesHandler struct {
	categories infra.CategoryRepository
	log        zerolog.Logger
}

// NewCategoriesHandler creates a categories handler.
func NewCategoriesHandler(categories infra.CategoryRepository, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{categories: categories, log: log}
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.categories.ListCategories(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": rows,
		"count":      len(rows),
	})
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	row := &infra.CategoryRow{
		UserID: middleware.UserID(ctx),
		Name:   req.Name,
		Color:  req.Color,
	}
	if err := h.categories.InsertCategory(ctx, row); err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{"success": true})
}

// Delete handles DELETE /api/categories/{name}. The category's budget
// target goes with it so the comparison view stays consistent.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()

	name = strings.TrimSpace(name)
	if name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.categories.DeleteCategory(ctx, middleware.UserID(ctx), name); err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("Failed to delete category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
