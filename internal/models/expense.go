package models

import "github.com/shopspring/decimal"

// Payment methods accepted for expenses and settlements.
const (
	MethodUPI          = "UPI"
	MethodCash         = "Cash"
	MethodBankTransfer = "Bank Transfer"
	MethodCard         = "Card"
)

// ValidPaymentMethod reports whether method is one of the accepted values.
func ValidPaymentMethod(method string) bool {
	switch method {
	case MethodUPI, MethodCash, MethodBankTransfer, MethodCard:
		return true
	}
	return false
}

// Expense represents money paid by one user, optionally shared with a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// UserID is the payer who owns this expense.
	UserID string

	// GroupID is the group this expense is shared with. Empty for
	// personal expenses, which have no splits.
	GroupID string

	// Description is the human-readable label (e.g., "Dinner at Saravana").
	Description string

	// Category is the budget category (e.g., "Food", "Travel").
	Category string

	// Amount is the full amount the payer spent.
	Amount decimal.Decimal

	// PaymentMethod is one of the Method* constants.
	PaymentMethod string

	// Date is the Unix timestamp of when the expense occurred.
	Date int64

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// ExpenseSplit is one group member's owed portion of a shared expense.
// Splits for an expense always sum to the expense amount.
type ExpenseSplit struct {
	// ID is the unique identifier for the split row (UUID format).
	ID string

	// ExpenseID references the shared expense.
	ExpenseID string

	// UserID is the member who owes this portion.
	UserID string

	// Amount is this member's share of the expense.
	Amount decimal.Decimal

	// Paid marks the share as settled. Informational only; balances are
	// derived from expenses, splits, and settlements, not this flag.
	Paid bool
}
