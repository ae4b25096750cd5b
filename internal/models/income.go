package models

import "github.com/shopspring/decimal"

// Income represents money received by a user. Incomes live in the personal
// ledger only: they are never split and do not affect budgets or balances.
type Income struct {
	// ID is the unique identifier for the income (UUID format).
	ID string

	// UserID is the recipient who owns this income.
	UserID string

	// Source is where the money came from (e.g., "Salary", "Refund").
	Source string

	// Amount is the amount received.
	Amount decimal.Decimal

	// Date is the Unix timestamp of when the income was received.
	Date int64

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
