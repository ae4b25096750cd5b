package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kharcha/kharcha/internal/models"
)

// CreateNotification persists a new notification.
func (s *SQLiteStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt == 0 {
		notification.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, category, budget_limit, current_spent, percentage, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Type, notification.Title, notification.Message,
		notification.Category, notification.BudgetLimit.String(), notification.CurrentSpent.String(),
		notification.Percentage.String(), notification.IsRead, notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListNotificationsByUser retrieves all notifications for a user, newest first.
func (s *SQLiteStore) ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, type, title, message, category, budget_limit, current_spent, percentage, is_read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var limit, spent, pct string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Category,
			&limit, &spent, &pct, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if n.BudgetLimit, err = parseAmount(limit); err != nil {
			return nil, err
		}
		if n.CurrentSpent, err = parseAmount(spent); err != nil {
			return nil, err
		}
		if n.Percentage, err = parseAmount(pct); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// CountRecentNotifications counts notifications of the given type and
// category created at or after since. Used for the cooldown check.
func (s *SQLiteStore) CountRecentNotifications(ctx context.Context, userID, notifType, category string, since int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications
		 WHERE user_id = ? AND type = ? AND category = ? AND created_at >= ?`,
		userID, notifType, category, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead sets is_read for the user's notification.
// Returns false when the notification does not exist or belongs to another user.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, notificationID, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update result: %w", err)
	}

	return affected == 1, nil
}
