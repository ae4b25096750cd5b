package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kharcha/kharcha/internal/models"
)

// UpsertBudget inserts a budget or updates the limit of an existing one
// for the same (user, category, month, year).
func (s *SQLiteStore) UpsertBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if budget.CreatedAt == 0 {
		budget.CreatedAt = now
	}
	budget.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_amount, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, category, month, year)
		 DO UPDATE SET limit_amount = excluded.limit_amount, updated_at = excluded.updated_at`,
		budget.ID, budget.UserID, budget.Category, budget.Limit.String(),
		budget.Month, budget.Year, budget.CreatedAt, budget.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}

	return nil
}

// GetBudget retrieves the budget for (user, category, month, year).
func (s *SQLiteStore) GetBudget(ctx context.Context, userID, category string, month, year int) (*models.Budget, error) {
	budget := &models.Budget{}
	var limit string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, limit_amount, month, year, created_at, updated_at
		 FROM budgets WHERE user_id = ? AND category = ? AND month = ? AND year = ?`,
		userID, category, month, year,
	).Scan(&budget.ID, &budget.UserID, &budget.Category, &limit,
		&budget.Month, &budget.Year, &budget.CreatedAt, &budget.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // Budget not configured for this category
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	budget.Limit, err = parseAmount(limit)
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// ListBudgets retrieves all of a user's budgets for a month.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string, month, year int) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, category, limit_amount, month, year, created_at, updated_at
		 FROM budgets WHERE user_id = ? AND month = ? AND year = ? ORDER BY category`,
		userID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget := &models.Budget{}
		var limit string
		if err := rows.Scan(&budget.ID, &budget.UserID, &budget.Category, &limit,
			&budget.Month, &budget.Year, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budget.Limit, err = parseAmount(limit)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}
