// Package notify implements the budget notification engine and the
// real-time channel notifications travel over.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/models"
	"github.com/kharcha/kharcha/internal/storage"
)

// Cooldown is the suppression window for repeated alerts of the same
// (user, type, category).
const Cooldown = time.Hour

var (
	notificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kharcha_notifications_emitted_total",
			Help: "Notifications persisted and pushed, by type.",
		},
		[]string{"type"},
	)

	notificationsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kharcha_notifications_suppressed_total",
			Help: "Budget alerts suppressed by the cooldown window.",
		},
	)
)

// tiers are evaluated highest-first so only one fires per check.
var tiers = []struct {
	threshold int64
	notifType string
}{
	{100, models.NotifyBudgetExceeded},
	{90, models.NotifyBudgetCritical},
	{75, models.NotifyBudgetWarning},
}

// Engine decides whether a new expense crossed a budget threshold and, if
// so, emits exactly one notification per tier per cooldown window.
//
// Every entry point is best-effort: errors are logged and swallowed so a
// notification failure can never fail or roll back the operation that
// triggered it.
type Engine struct {
	store storage.Store
	hub   *Hub

	// now is replaceable in tests to control the cooldown window.
	now func() time.Time
}

// NewEngine creates a notification engine over the given store and hub.
func NewEngine(store storage.Store, hub *Hub) *Engine {
	return &Engine{store: store, hub: hub, now: time.Now}
}

// ExpenseRecorded re-evaluates the budget for the expense's category.
// Call after the expense has been persisted so the spend recomputation
// includes it.
func (e *Engine) ExpenseRecorded(ctx context.Context, expense *models.Expense) {
	if err := e.checkBudget(ctx, expense); err != nil {
		slog.Error("budget notification check failed",
			"user_id", expense.UserID,
			"category", expense.Category,
			"error", err,
		)
	}
}

func (e *Engine) checkBudget(ctx context.Context, expense *models.Expense) error {
	now := e.now()
	month, year := int(now.Month()), now.Year()

	// Budgets are opt-in per category.
	budget, err := e.store.GetBudget(ctx, expense.UserID, expense.Category, month, year)
	if err != nil {
		return err
	}
	if budget == nil || !budget.Limit.IsPositive() {
		return nil
	}

	// Recompute the month's spend, including the just-persisted expense.
	from, to := monthBounds(now)
	expenses, err := e.store.ListExpensesByUser(ctx, expense.UserID, expense.Category, from, to)
	if err != nil {
		return err
	}
	spent := decimal.Zero
	for _, exp := range expenses {
		spent = spent.Add(exp.Amount)
	}

	percentage := spent.Div(budget.Limit).Mul(decimal.NewFromInt(100)).Round(1)

	notifType := classifyTier(percentage)
	if notifType == "" {
		return nil
	}

	// Cooldown: suppress if the same (user, type, category) alert fired
	// within the window. The read-then-create here is racy under
	// concurrent expenses; the worst case is one duplicate alert.
	since := now.Add(-Cooldown).Unix()
	recent, err := e.store.CountRecentNotifications(ctx, expense.UserID, notifType, expense.Category, since)
	if err != nil {
		return err
	}
	if recent > 0 {
		notificationsSuppressed.Inc()
		slog.Debug("budget alert suppressed by cooldown",
			"user_id", expense.UserID,
			"type", notifType,
			"category", expense.Category,
		)
		return nil
	}

	notification := &models.Notification{
		UserID:       expense.UserID,
		Type:         notifType,
		Title:        alertTitle(notifType, expense.Category),
		Message:      alertMessage(notifType, expense.Category, percentage),
		Category:     expense.Category,
		BudgetLimit:  budget.Limit,
		CurrentSpent: spent,
		Percentage:   percentage,
		CreatedAt:    now.Unix(),
	}
	if err := e.store.CreateNotification(ctx, notification); err != nil {
		return err
	}

	notificationsEmitted.WithLabelValues(notifType).Inc()
	slog.Info("budget alert emitted",
		"user_id", expense.UserID,
		"type", notifType,
		"category", expense.Category,
		"percentage", percentage.String(),
	)

	e.hub.Publish(expense.UserID, BudgetAlert{
		NotificationID: notification.ID,
		Type:           notifType,
		Category:       expense.Category,
		BudgetLimit:    budget.Limit,
		CurrentSpent:   spent,
		Percentage:     percentage,
		Title:          notification.Title,
		Message:        notification.Message,
	})

	return nil
}

// SettlementRequested notifies the creditor that a debtor wants to settle up.
func (e *Engine) SettlementRequested(ctx context.Context, settlement *models.Settlement, debtor *models.User) {
	notification := &models.Notification{
		UserID:    settlement.ToUserID,
		Type:      models.NotifyPaymentRequest,
		Title:     "Settlement requested",
		Message:   fmt.Sprintf("%s wants to settle ₹%s with you", debtor.DisplayName, settlement.Amount.StringFixed(2)),
		CreatedAt: e.now().Unix(),
	}
	if err := e.store.CreateNotification(ctx, notification); err != nil {
		slog.Error("failed to persist payment request notification", "settlement_id", settlement.ID, "error", err)
		return
	}
	notificationsEmitted.WithLabelValues(models.NotifyPaymentRequest).Inc()

	e.hub.Publish(settlement.ToUserID, PaymentRequest{
		NotificationID: notification.ID,
		SettlementID:   settlement.ID,
		GroupID:        settlement.GroupID,
		FromUserID:     settlement.FromUserID,
		FromUserName:   debtor.DisplayName,
		Amount:         settlement.Amount,
		Title:          notification.Title,
		Message:        notification.Message,
	})
}

// SettlementPaid notifies the creditor that a settlement was marked paid.
func (e *Engine) SettlementPaid(ctx context.Context, settlement *models.Settlement, debtor *models.User) {
	notification := &models.Notification{
		UserID:    settlement.ToUserID,
		Type:      models.NotifyPaymentReceived,
		Title:     "Payment received",
		Message:   fmt.Sprintf("%s paid you ₹%s", debtor.DisplayName, settlement.Amount.StringFixed(2)),
		CreatedAt: e.now().Unix(),
	}
	if err := e.store.CreateNotification(ctx, notification); err != nil {
		slog.Error("failed to persist payment received notification", "settlement_id", settlement.ID, "error", err)
		return
	}
	notificationsEmitted.WithLabelValues(models.NotifyPaymentReceived).Inc()

	e.hub.Publish(settlement.ToUserID, PaymentReceived{
		NotificationID: notification.ID,
		SettlementID:   settlement.ID,
		GroupID:        settlement.GroupID,
		FromUserID:     settlement.FromUserID,
		FromUserName:   debtor.DisplayName,
		Amount:         settlement.Amount,
		TransactionID:  settlement.TransactionID,
		Title:          notification.Title,
		Message:        notification.Message,
	})
}

// classifyTier returns the notification type for the utilization
// percentage, or "" when below every threshold.
func classifyTier(percentage decimal.Decimal) string {
	for _, tier := range tiers {
		if percentage.GreaterThanOrEqual(decimal.NewFromInt(tier.threshold)) {
			return tier.notifType
		}
	}
	return ""
}

// monthBounds returns [start, end) Unix timestamps for t's calendar month.
func monthBounds(t time.Time) (int64, int64) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start.Unix(), start.AddDate(0, 1, 0).Unix()
}

func alertTitle(notifType, category string) string {
	switch notifType {
	case models.NotifyBudgetExceeded:
		return fmt.Sprintf("%s budget exceeded", category)
	case models.NotifyBudgetCritical:
		return fmt.Sprintf("%s budget almost spent", category)
	default:
		return fmt.Sprintf("%s budget warning", category)
	}
}

func alertMessage(notifType, category string, percentage decimal.Decimal) string {
	switch notifType {
	case models.NotifyBudgetExceeded:
		return fmt.Sprintf("You have spent %s%% of your %s budget this month", percentage.String(), category)
	case models.NotifyBudgetCritical:
		return fmt.Sprintf("Your %s budget is almost exhausted at %s%%", category, percentage.String())
	default:
		return fmt.Sprintf("You have used %s%% of your %s budget this month", percentage.String(), category)
	}
}
