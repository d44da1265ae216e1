package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spendtrail/spendtrail/internal/models"
)

// ExpenseRepository defines the persistence operations the expense service needs
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetByID(ctx context.Context, userID, id string) (*models.Expense, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Expense, error)
	Update(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

// ExpenseService handles expense business logic
type ExpenseService struct {
	repo   ExpenseRepository
	logger *slog.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(repo ExpenseRepository, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{repo: repo, logger: logger}
}

func (s *ExpenseService) Create(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error) {
	expense.UserID = userID
	expense.ItemName = strings.TrimSpace(expense.ItemName)

	if !models.IsValidCategory(expense.Category) {
		return nil, models.ErrBadRequest
	}
	// 0 is a valid amount (free items); only negatives are rejected.
	if expense.Amount < 0 {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, expense)
	if err != nil {
		s.logger.Error("failed to create expense", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*models.Expense, error) {
	expense, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get expense", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return expense, nil
}

func (s *ExpenseService) List(ctx context.Context, userID string) ([]*models.Expense, error) {
	expenses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list expenses", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return expenses, nil
}

// Update replaces the mutable fields of an expense. Missing fields keep
// their current value; the handler merges the patch before calling here.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error) {
	expense.ItemName = strings.TrimSpace(expense.ItemName)

	if !models.IsValidCategory(expense.Category) {
		return nil, models.ErrBadRequest
	}
	if expense.Amount < 0 {
		return nil, models.ErrBadRequest
	}

	updated, err := s.repo.Update(ctx, userID, id, expense)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update expense", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete expense", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}
