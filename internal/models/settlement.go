package models

import "github.com/shopspring/decimal"

// Settlement statuses. Pending is the only non-terminal state:
// pending -> paid, pending -> cancelled. No transitions out of paid/cancelled.
const (
	SettlementPending   = "pending"
	SettlementPaid      = "paid"
	SettlementCancelled = "cancelled"
)

// MaxSettlementAmount is the upper bound on a single settlement.
var MaxSettlementAmount = decimal.RequireFromString("999999.99")

// Settlement represents a payment between group members to clear debts.
// The amount is the debtor's snapshot of what they owed at creation time;
// it is not re-derived when the settlement is paid.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the debtor settling up.
	FromUserID string

	// ToUserID is the creditor being paid.
	ToUserID string

	// Amount is the payment amount entered by the debtor.
	Amount decimal.Decimal

	// Status is one of SettlementPending, SettlementPaid, SettlementCancelled.
	Status string

	// PaymentMethod records how the debtor paid. Set on the paid transition.
	PaymentMethod string

	// TransactionID is the external payment reference supplied by the debtor.
	TransactionID string

	// PaidAt is the Unix timestamp of the paid transition, 0 while pending.
	PaidAt int64

	// CreatedAt is the Unix timestamp when the settlement was requested.
	CreatedAt int64
}
