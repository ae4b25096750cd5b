package models

import "github.com/shopspring/decimal"

// Notification types.
const (
	NotifyBudgetWarning   = "budget_warning"
	NotifyBudgetCritical  = "budget_critical"
	NotifyBudgetExceeded  = "budget_exceeded"
	NotifyPaymentReminder = "payment_reminder"
	NotifyPaymentRequest  = "payment_request"
	NotifyPaymentReceived = "payment_received"
)

// Notification is an alert persisted for a single user. Budget alerts carry
// the budget fields; payment alerts leave them zero.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// UserID is the recipient.
	UserID string

	// Type is one of the Notify* constants.
	Type string

	// Title is the short headline.
	Title string

	// Message is the full human-readable text.
	Message string

	// Category is the budget category that triggered a budget alert.
	Category string

	// BudgetLimit is the limit in effect when a budget alert fired.
	BudgetLimit decimal.Decimal

	// CurrentSpent is the month's category spend when a budget alert fired.
	CurrentSpent decimal.Decimal

	// Percentage is CurrentSpent/BudgetLimit*100, rounded to one decimal.
	Percentage decimal.Decimal

	// IsRead is set once the user has seen the notification.
	IsRead bool

	// CreatedAt is the Unix timestamp when the notification was created.
	CreatedAt int64
}
