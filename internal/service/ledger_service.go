package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/models"
	"github.com/kharcha/kharcha/internal/storage"
)

// upiAddressPattern matches "localpart@bank-handle" payment addresses.
var upiAddressPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9]+$`)

// LedgerService covers the personal ledger surfaces: incomes, budgets,
// notifications and the UPI profile field.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// GetUser loads a user's profile by ID.
func (s *LedgerService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("GetUserByID failed", "user_id", userID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load user")
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found: %s", userID)
	}
	return user, nil
}

// CreateIncome records money received by the caller.
func (s *LedgerService) CreateIncome(ctx context.Context, callerID, source string, amount decimal.Decimal, date int64) (*models.Income, error) {
	if !amount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "amount must be positive")
	}
	if strings.TrimSpace(source) == "" {
		return nil, apperr.New(apperr.Validation, "source is required")
	}

	income := &models.Income{
		UserID: callerID,
		Source: source,
		Amount: amount,
		Date:   date,
	}
	if err := s.store.CreateIncome(ctx, income); err != nil {
		slog.Error("CreateIncome failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to create income")
	}
	return income, nil
}

// ListIncomes returns the caller's incomes, newest first.
func (s *LedgerService) ListIncomes(ctx context.Context, callerID string) ([]*models.Income, error) {
	incomes, err := s.store.ListIncomesByUser(ctx, callerID)
	if err != nil {
		slog.Error("ListIncomesByUser failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list incomes")
	}
	return incomes, nil
}

// SetBudget creates or updates the caller's spending limit for a
// (category, month, year). Setting it again replaces the limit.
func (s *LedgerService) SetBudget(ctx context.Context, callerID, category string, limit decimal.Decimal, month, year int) (*models.Budget, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperr.New(apperr.Validation, "category is required")
	}
	if !limit.IsPositive() {
		return nil, apperr.New(apperr.Validation, "limit must be positive")
	}
	if month < 1 || month > 12 {
		return nil, apperr.New(apperr.Validation, "month must be between 1 and 12")
	}

	budget := &models.Budget{
		UserID:   callerID,
		Category: category,
		Limit:    limit,
		Month:    month,
		Year:     year,
	}
	if err := s.store.UpsertBudget(ctx, budget); err != nil {
		slog.Error("UpsertBudget failed", "user_id", callerID, "category", category, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to save budget")
	}

	slog.Info("Budget set",
		"user_id", callerID,
		"category", category,
		"limit", limit.String(),
		"month", month,
		"year", year,
	)
	return budget, nil
}

// ListBudgets returns the caller's budgets for a month.
func (s *LedgerService) ListBudgets(ctx context.Context, callerID string, month, year int) ([]*models.Budget, error) {
	if month < 1 || month > 12 {
		return nil, apperr.New(apperr.Validation, "month must be between 1 and 12")
	}
	budgets, err := s.store.ListBudgets(ctx, callerID, month, year)
	if err != nil {
		slog.Error("ListBudgets failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list budgets")
	}
	return budgets, nil
}

// ListNotifications returns the caller's notifications, newest first.
func (s *LedgerService) ListNotifications(ctx context.Context, callerID string) ([]*models.Notification, error) {
	notifications, err := s.store.ListNotificationsByUser(ctx, callerID)
	if err != nil {
		slog.Error("ListNotificationsByUser failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list notifications")
	}
	return notifications, nil
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *LedgerService) MarkNotificationRead(ctx context.Context, callerID, notificationID string) error {
	ok, err := s.store.MarkNotificationRead(ctx, notificationID, callerID)
	if err != nil {
		slog.Error("MarkNotificationRead failed", "notification_id", notificationID, "error", err)
		return apperr.Wrap(apperr.Internal, err, "failed to update notification")
	}
	if !ok {
		return apperr.New(apperr.NotFound, "notification not found: %s", notificationID)
	}
	return nil
}

// SetUPIAddress updates the caller's payment address. Other members need it
// to generate payment links toward the caller.
func (s *LedgerService) SetUPIAddress(ctx context.Context, callerID, upiAddress string) (*models.User, error) {
	upiAddress = strings.TrimSpace(upiAddress)
	if !upiAddressPattern.MatchString(upiAddress) {
		return nil, apperr.New(apperr.Validation, "UPI address must look like name@bank")
	}

	if err := s.store.UpdateUserUPI(ctx, callerID, upiAddress); err != nil {
		slog.Error("UpdateUserUPI failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to update UPI address")
	}

	user, err := s.store.GetUserByID(ctx, callerID)
	if err != nil {
		slog.Error("GetUserByID failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load user")
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found: %s", callerID)
	}

	slog.Info("UPI address updated", "user_id", callerID)
	return user, nil
}
