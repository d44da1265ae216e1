package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/models"
	pkghttp "github.com/spendtrail/spendtrail/pkg/http"
)

// ExpenseServiceInterface defines the interface for expense business logic
type ExpenseServiceInterface interface {
	Create(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error)
	Get(ctx context.Context, userID, id string) (*models.Expense, error)
	List(ctx context.Context, userID string) ([]*models.Expense, error)
	Update(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	service ExpenseServiceInterface
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// CreateExpenseRequest represents the request body for creating an expense.
// Amount is a pointer so an explicit 0 (a free item) passes the required
// check; purchasedDate defaults to now when absent.
type CreateExpenseRequest struct {
	Category      string     `json:"category" validate:"required"`
	ItemName      string     `json:"itemName" validate:"required,min=1,max=50"`
	Amount        *float64   `json:"amount" validate:"required,gte=0"`
	Description   string     `json:"description" validate:"max=100"`
	PurchasedDate *time.Time `json:"purchasedDate"`
}

// UpdateExpenseRequest represents the request body for updating an expense.
// All fields are optional; absent ones keep their current value.
type UpdateExpenseRequest struct {
	Category      *string    `json:"category"`
	ItemName      *string    `json:"itemName" validate:"omitempty,min=1,max=50"`
	Amount        *float64   `json:"amount" validate:"omitempty,gte=0"`
	Description   *string    `json:"description" validate:"omitempty,max=100"`
	PurchasedDate *time.Time `json:"purchasedDate"`
}

// Create handles POST /expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	purchasedDate := time.Now()
	if req.PurchasedDate != nil {
		purchasedDate = *req.PurchasedDate
	}

	expense := &models.Expense{
		Category:      req.Category,
		ItemName:      req.ItemName,
		Amount:        *req.Amount,
		Description:   req.Description,
		PurchasedDate: purchasedDate,
	}

	created, err := h.service.Create(r.Context(), user.ID, expense)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid expense")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to create expense")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Expense created successfully", created)
}

// List handles GET /expenses
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	expenses, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteFromError(w, err, "Failed to list expenses")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Expenses fetched successfully", expenses)
}

// Get handles GET /expenses/{id}
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	expense, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteFromError(w, err, "Expense not found")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Expense fetched successfully", expense)
}

// Update handles PATCH /expenses/{id}
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")

	// Merge the patch over the current row so unset fields survive.
	current, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		pkghttp.WriteFromError(w, err, "Expense not found")
		return
	}

	if req.Category != nil {
		current.Category = *req.Category
	}
	if req.ItemName != nil {
		current.ItemName = *req.ItemName
	}
	if req.Amount != nil {
		current.Amount = *req.Amount
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.PurchasedDate != nil {
		current.PurchasedDate = *req.PurchasedDate
	}

	updated, err := h.service.Update(r.Context(), user.ID, id, current)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid expense")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to update expense")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Expense updated successfully", updated)
}

// Delete handles DELETE /expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		pkghttp.WriteFromError(w, err, "Expense not found")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Expense deleted successfully", nil)
}
