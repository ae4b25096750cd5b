package notify

import "github.com/shopspring/decimal"

// Event is a real-time payload pushed to a single user. The set of event
// types is closed: only the structs in this package implement it, and each
// kind carries only the fields that kind needs.
type Event interface {
	// EventName is the SSE event name clients subscribe to.
	EventName() string

	sealed()
}

// BudgetAlert is emitted when a category's monthly spend crosses a
// budget threshold tier.
type BudgetAlert struct {
	NotificationID string          `json:"notificationId"`
	Type           string          `json:"type"`
	Category       string          `json:"category"`
	BudgetLimit    decimal.Decimal `json:"budgetLimit"`
	CurrentSpent   decimal.Decimal `json:"currentSpent"`
	Percentage     decimal.Decimal `json:"percentage"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
}

func (BudgetAlert) EventName() string { return "budget_notification" }
func (BudgetAlert) sealed()           {}

// PaymentRequest is sent to a creditor when a debtor opens a settlement.
type PaymentRequest struct {
	NotificationID string          `json:"notificationId"`
	SettlementID   string          `json:"settlementId"`
	GroupID        string          `json:"groupId"`
	FromUserID     string          `json:"fromUserId"`
	FromUserName   string          `json:"fromUserName"`
	Amount         decimal.Decimal `json:"amount"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
}

func (PaymentRequest) EventName() string { return "payment_notification" }
func (PaymentRequest) sealed()           {}

// PaymentReceived is sent to a creditor when a debtor marks a settlement paid.
type PaymentReceived struct {
	NotificationID string          `json:"notificationId"`
	SettlementID   string          `json:"settlementId"`
	GroupID        string          `json:"groupId"`
	FromUserID     string          `json:"fromUserId"`
	FromUserName   string          `json:"fromUserName"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionID  string          `json:"transactionId"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
}

func (PaymentReceived) EventName() string { return "payment_notification" }
func (PaymentReceived) sealed()           {}
