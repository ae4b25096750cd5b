package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kharcha/kharcha/internal/models"
)

// CreateIncome persists a new income record.
func (s *SQLiteStore) CreateIncome(ctx context.Context, income *models.Income) error {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	if income.CreatedAt == 0 {
		income.CreatedAt = time.Now().Unix()
	}
	if income.Date == 0 {
		income.Date = income.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, source, amount, income_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		income.ID, income.UserID, income.Source, income.Amount.String(), income.Date, income.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}

	return nil
}

// ListIncomesByUser retrieves all incomes for a user, newest first.
func (s *SQLiteStore) ListIncomesByUser(ctx context.Context, userID string) ([]*models.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, source, amount, income_date, created_at
		 FROM incomes WHERE user_id = ? ORDER BY income_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []*models.Income
	for rows.Next() {
		income := &models.Income{}
		var amount string
		if err := rows.Scan(&income.ID, &income.UserID, &income.Source, &amount, &income.Date, &income.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		income.Amount, err = parseAmount(amount)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incomes: %w", err)
	}

	return incomes, nil
}
