package models

import "github.com/shopspring/decimal"

// Budget is a per-category monthly spending limit. Budgets are opt-in:
// categories without a budget row never produce notifications.
// Unique per (UserID, Category, Month, Year).
type Budget struct {
	// ID is the unique identifier for the budget (UUID format).
	ID string

	// UserID is the owner of this budget.
	UserID string

	// Category is the expense category the limit applies to.
	Category string

	// Limit is the spending limit for the month.
	Limit decimal.Decimal

	// Month is the calendar month (1-12).
	Month int

	// Year is the calendar year (e.g., 2026).
	Year int

	// CreatedAt is the Unix timestamp when the budget was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last limit change.
	UpdatedAt int64
}
