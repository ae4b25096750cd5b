package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kharcha/kharcha/internal/models"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount.String(), settlement.Status, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, status, payment_method, transaction_id, paid_at, created_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	)

	settlement, err := scanSettlement(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil // Settlement not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// FindPendingSettlement looks up an existing pending settlement for the
// same (group, debtor, creditor) pair. Returns (nil, nil) when none exists.
func (s *SQLiteStore) FindPendingSettlement(ctx context.Context, groupID, fromUserID, toUserID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, status, payment_method, transaction_id, paid_at, created_at
		 FROM settlements WHERE group_id = ? AND from_user_id = ? AND to_user_id = ? AND status = ?`,
		groupID, fromUserID, toUserID, models.SettlementPending,
	)

	settlement, err := scanSettlement(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending settlement: %w", err)
	}

	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount, status, payment_method, transaction_id, paid_at, created_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// TransitionSettlement atomically moves a settlement from fromStatus to
// toStatus. The status guard lives in the WHERE clause so two concurrent
// transitions on the same settlement cannot both succeed.
func (s *SQLiteStore) TransitionSettlement(ctx context.Context, settlementID, fromStatus, toStatus, paymentMethod, transactionID string, paidAt int64) (bool, error) {
	var method, txnID interface{} = nil, nil
	if paymentMethod != "" {
		method = paymentMethod
	}
	if transactionID != "" {
		txnID = transactionID
	}
	var paidAtVal interface{} = nil
	if paidAt != 0 {
		paidAtVal = paidAt
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE settlements
		 SET status = ?, payment_method = ?, transaction_id = ?, paid_at = ?
		 WHERE id = ? AND status = ?`,
		toStatus, method, txnID, paidAtVal, settlementID, fromStatus,
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition settlement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check transition result: %w", err)
	}

	return affected == 1, nil
}

func scanSettlement(scan func(dest ...any) error) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount string
	var method, txnID sql.NullString
	var paidAt sql.NullInt64

	err := scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID, &settlement.ToUserID,
		&amount, &settlement.Status, &method, &txnID, &paidAt, &settlement.CreatedAt)
	if err != nil {
		return nil, err
	}

	settlement.Amount, err = parseAmount(amount)
	if err != nil {
		return nil, err
	}
	if method.Valid {
		settlement.PaymentMethod = method.String
	}
	if txnID.Valid {
		settlement.TransactionID = txnID.String
	}
	if paidAt.Valid {
		settlement.PaidAt = paidAt.Int64
	}

	return settlement, nil
}
