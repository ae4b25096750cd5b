package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/models"
	"github.com/kharcha/kharcha/internal/notify"
	"github.com/kharcha/kharcha/internal/storage"
)

// ExpenseService records expenses and their splits.
type ExpenseService struct {
	store    storage.Store
	notifier *notify.Engine
	groups   *GroupService
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, notifier *notify.Engine, groups *GroupService) *ExpenseService {
	return &ExpenseService{store: store, notifier: notifier, groups: groups}
}

// SplitInput is one member's requested share of a shared expense.
type SplitInput struct {
	UserID string
	Amount decimal.Decimal
}

// CreateExpenseInput carries everything needed to record an expense.
type CreateExpenseInput struct {
	PayerID       string
	GroupID       string
	Description   string
	Category      string
	Amount        decimal.Decimal
	PaymentMethod string
	Date          int64

	// Splits is only meaningful for group expenses. Empty means split
	// equally among all group members.
	Splits []SplitInput
}

// Create validates and persists an expense, then hands it to the budget
// notification engine. A notification failure never fails the expense.
func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "amount must be positive")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, apperr.New(apperr.Validation, "category is required")
	}
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, apperr.New(apperr.Validation, "invalid payment method: %s", input.PaymentMethod)
	}

	var splits []models.ExpenseSplit
	if input.GroupID != "" {
		group, err := s.groups.Get(ctx, input.PayerID, input.GroupID)
		if err != nil {
			return nil, err
		}

		splitInputs := input.Splits
		if len(splitInputs) == 0 {
			memberIDs := make([]string, len(group.Members))
			for i, m := range group.Members {
				memberIDs[i] = m.UserID
			}
			splitInputs = SplitEqually(input.Amount, memberIDs)
		}

		splits, err = validateSplits(group, input.Amount, splitInputs)
		if err != nil {
			return nil, err
		}
	} else if len(input.Splits) > 0 {
		return nil, apperr.New(apperr.Validation, "splits require a group expense")
	}

	expense := &models.Expense{
		UserID:        input.PayerID,
		GroupID:       input.GroupID,
		Description:   input.Description,
		Category:      input.Category,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Date:          input.Date,
	}

	if err := s.store.CreateExpense(ctx, expense, splits); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to create expense")
	}

	// Best-effort side effect; the expense is already committed.
	s.notifier.ExpenseRecorded(ctx, expense)

	return expense, nil
}

// ListMine returns the caller's expenses for a calendar month, optionally
// narrowed to one category.
func (s *ExpenseService) ListMine(ctx context.Context, callerID, category string, month, year int) ([]*models.Expense, error) {
	if month < 1 || month > 12 {
		return nil, apperr.New(apperr.Validation, "month must be between 1 and 12")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	from, to := start.Unix(), start.AddDate(0, 1, 0).Unix()

	expenses, err := s.store.ListExpensesByUser(ctx, callerID, category, from, to)
	if err != nil {
		slog.Error("ListExpensesByUser failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list expenses")
	}
	return expenses, nil
}

// ListByGroup returns a group's shared expenses. The caller must be a member.
func (s *ExpenseService) ListByGroup(ctx context.Context, callerID, groupID string) ([]*models.Expense, error) {
	if _, err := s.groups.Get(ctx, callerID, groupID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListExpensesByGroup failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list expenses")
	}
	return expenses, nil
}

// SplitEqually divides amount across userIDs in paise-exact shares.
// The remainder after flooring to two decimals is distributed one paisa
// at a time to the earliest members, so the shares always sum to amount.
func SplitEqually(amount decimal.Decimal, userIDs []string) []SplitInput {
	n := int64(len(userIDs))
	if n == 0 {
		return nil
	}

	paisa := decimal.New(1, -2)
	base := amount.Div(decimal.NewFromInt(n)).RoundFloor(2)
	remainder := amount.Sub(base.Mul(decimal.NewFromInt(n)))
	extras := remainder.Div(paisa).IntPart()

	splits := make([]SplitInput, n)
	for i, userID := range userIDs {
		share := base
		if int64(i) < extras {
			share = share.Add(paisa)
		}
		splits[i] = SplitInput{UserID: userID, Amount: share}
	}
	return splits
}

// validateSplits checks assignees are members, amounts are positive, and
// the shares sum exactly to the expense amount.
func validateSplits(group *models.Group, amount decimal.Decimal, inputs []SplitInput) ([]models.ExpenseSplit, error) {
	sum := decimal.Zero
	seen := make(map[string]bool, len(inputs))
	splits := make([]models.ExpenseSplit, 0, len(inputs))

	for _, in := range inputs {
		if !group.IsMember(in.UserID) {
			return nil, apperr.New(apperr.Validation, "split assignee %s is not a group member", in.UserID)
		}
		if seen[in.UserID] {
			return nil, apperr.New(apperr.Validation, "duplicate split for user %s", in.UserID)
		}
		seen[in.UserID] = true
		if !in.Amount.IsPositive() {
			return nil, apperr.New(apperr.Validation, "split amounts must be positive")
		}
		sum = sum.Add(in.Amount)
		splits = append(splits, models.ExpenseSplit{UserID: in.UserID, Amount: in.Amount})
	}

	if !sum.Equal(amount) {
		return nil, apperr.New(apperr.Validation,
			"split amounts must sum to the expense amount: got %s, want %s", sum.String(), amount.String())
	}

	return splits, nil
}
