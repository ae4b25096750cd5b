// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/kharcha/kharcha/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Get* methods return (nil, nil) when the record does not exist; callers
// translate that into their own not-found errors.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateUserUPI(ctx context.Context, userID, upiAddress string) error

	// Groups
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)
	AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error

	// Expenses. CreateExpense persists the expense and its splits atomically.
	CreateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	ListSplitsByGroup(ctx context.Context, groupID string) ([]*models.ExpenseSplit, error)
	// ListExpensesByUser returns the user's expenses with date in [from, to).
	// category narrows the result when non-empty.
	ListExpensesByUser(ctx context.Context, userID, category string, from, to int64) ([]*models.Expense, error)

	// Incomes
	CreateIncome(ctx context.Context, income *models.Income) error
	ListIncomesByUser(ctx context.Context, userID string) ([]*models.Income, error)

	// Budgets
	UpsertBudget(ctx context.Context, budget *models.Budget) error
	GetBudget(ctx context.Context, userID, category string, month, year int) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID string, month, year int) ([]*models.Budget, error)

	// Settlements
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	FindPendingSettlement(ctx context.Context, groupID, fromUserID, toUserID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	// TransitionSettlement atomically moves a settlement from fromStatus to
	// toStatus, stamping payment details when provided. Returns false when
	// the settlement was not in fromStatus (lost race or invalid transition).
	TransitionSettlement(ctx context.Context, settlementID, fromStatus, toStatus, paymentMethod, transactionID string, paidAt int64) (bool, error)

	// Notifications
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	// CountRecentNotifications counts the user's notifications of the given
	// type and category created at or after since (Unix seconds).
	CountRecentNotifications(ctx context.Context, userID, notifType, category string, since int64) (int, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
