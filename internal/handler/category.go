package handler

import (
	"log/slog"
	"net/http"

	notesSvc "kiroku/internal/domain/services/notes"
	"kiroku/internal/httputil"
)

// CategoryHandler handles category HTTP requests. Categories are derived
// from note paths, so every operation here is a view or a cascade over the
// notes table.
type CategoryHandler struct {
	categoryService notesSvc.CategoryService
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService notesSvc.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// GetTree returns the ordered category tree
// GET /api/categories/tree?sort=name|fileCount
func (h *CategoryHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	tree, err := h.categoryService.GetTree(r.Context(), userID, r.URL.Query().Get("sort"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetImpact previews what a destructive operation on a category would touch
// GET /api/categories/impact?path=...
func (h *CategoryHandler) GetImpact(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Category path is required")
		return
	}

	impact, err := h.categoryService.GetImpact(r.Context(), userID, path)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, impact)
}

// RenameCategory renames a category, cascading to every note under it
// POST /api/categories/rename
func (h *CategoryHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req notesSvc.MoveCategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.categoryService.RenameCategory(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// MoveCategory relocates a category subtree
// POST /api/categories/move
func (h *CategoryHandler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req notesSvc.MoveCategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.categoryService.MoveCategory(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// DeleteCategory deletes every note at or under a category path
// DELETE /api/categories?path=...
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Category path is required")
		return
	}

	result, err := h.categoryService.DeleteCategory(r.Context(), userID, path)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
