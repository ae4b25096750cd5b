package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kharcha/kharcha/internal/models"
)

// CreateExpense persists an expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID interface{} = nil
	if expense.GroupID != "" {
		groupID = expense.GroupID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, group_id, description, category, amount, payment_method, expense_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, groupID, expense.Description, expense.Category,
		expense.Amount.String(), expense.PaymentMethod, expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range splits {
		split := &splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (id, expense_id, user_id, amount, paid) VALUES (?, ?, ?, ?, ?)",
			split.ID, split.ExpenseID, split.UserID, split.Amount.String(), split.Paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpensesByGroup retrieves all expenses shared with a group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, group_id, description, category, amount, payment_method, expense_date, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListSplitsByGroup retrieves all split rows for a group's expenses.
func (s *SQLiteStore) ListSplitsByGroup(ctx context.Context, groupID string) ([]*models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT es.id, es.expense_id, es.user_id, es.amount, es.paid
		 FROM expense_splits es
		 JOIN expenses e ON e.id = es.expense_id
		 WHERE e.group_id = ?`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by group: %w", err)
	}
	defer rows.Close()

	var splits []*models.ExpenseSplit
	for rows.Next() {
		split := &models.ExpenseSplit{}
		var amount string
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &amount, &split.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		split.Amount, err = parseAmount(amount)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}

	return splits, nil
}

// ListExpensesByUser retrieves the user's expenses with expense_date in
// [from, to), optionally narrowed to one category.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID, category string, from, to int64) ([]*models.Expense, error) {
	query := `SELECT id, user_id, group_id, description, category, amount, payment_method, expense_date, created_at
		 FROM expenses WHERE user_id = ? AND expense_date >= ? AND expense_date < ?`
	args := []interface{}{userID, from, to}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY expense_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by user: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

func scanExpenses(rows *sql.Rows) ([]*models.Expense, error) {
	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var groupID sql.NullString
		var amount string

		if err := rows.Scan(&expense.ID, &expense.UserID, &groupID, &expense.Description,
			&expense.Category, &amount, &expense.PaymentMethod, &expense.Date, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		if groupID.Valid {
			expense.GroupID = groupID.String
		}
		var err error
		expense.Amount, err = parseAmount(amount)
		if err != nil {
			return nil, err
		}

		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}
