package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spendtrail/spendtrail/internal/database"
	"github.com/spendtrail/spendtrail/internal/models"
)

const expenseColumns = `id, user_id, category, item_name, amount, description, purchased_date, created_at, updated_at`

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(db *database.DB) *ExpenseRepository {
	return &ExpenseRepository{pool: db.Pool}
}

func scanExpenseRow(scanner rowScanner) (*models.Expense, error) {
	var expense models.Expense
	var description *string

	err := scanner.Scan(
		&expense.ID, &expense.UserID, &expense.Category, &expense.ItemName,
		&expense.Amount, &description, &expense.PurchasedDate,
		&expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if description != nil {
		expense.Description = *description
	}

	return &expense, nil
}

func scanExpenseRows(rows pgx.Rows) ([]*models.Expense, error) {
	defer rows.Close()

	expenses := make([]*models.Expense, 0)

	for rows.Next() {
		expense, err := scanExpenseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return expenses, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	expense.ID = uuid.New().String()

	now := time.Now()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	query := `
		INSERT INTO expenses (id, user_id, category, item_name, amount, description, purchased_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + expenseColumns

	var description *string
	if expense.Description != "" {
		description = &expense.Description
	}

	return scanExpenseRow(r.pool.QueryRow(ctx, query,
		expense.ID, expense.UserID, expense.Category, expense.ItemName,
		expense.Amount, description, expense.PurchasedDate,
		expense.CreatedAt, expense.UpdatedAt,
	))
}

// GetByID is scoped to the owning user so one user can never read another's
// expense by guessing ids.
func (r *ExpenseRepository) GetByID(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND user_id = $2`
	return scanExpenseRow(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1 ORDER BY purchased_date DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	return scanExpenseRows(rows)
}

func (r *ExpenseRepository) Update(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error) {
	query := `
		UPDATE expenses
		SET category = $1, item_name = $2, amount = $3, description = $4, purchased_date = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + expenseColumns

	var description *string
	if expense.Description != "" {
		description = &expense.Description
	}

	return scanExpenseRow(r.pool.QueryRow(ctx, query,
		expense.Category, expense.ItemName, expense.Amount,
		description, expense.PurchasedDate, id, userID,
	))
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
