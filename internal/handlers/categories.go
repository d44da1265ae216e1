package handlers

import (
	"net/http"

	"github.com/spendtrail/spendtrail/internal/models"
	pkghttp "github.com/spendtrail/spendtrail/pkg/http"
)

// CategoryHandler serves the predefined expense categories
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List handles GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteSuccess(w, http.StatusOK, "Categories fetched successfully", models.Categories)
}
