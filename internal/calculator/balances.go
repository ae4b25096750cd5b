// Package calculator derives per-member balance projections for a group.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/models"
)

// Balance statuses.
const (
	StatusOwed    = "owed"
	StatusOwes    = "owes"
	StatusSettled = "settled"
)

// MemberBalance is one member's net position in a group.
type MemberBalance struct {
	UserID    string
	UserName  string
	UserEmail string

	// Balance is (sum of expenses the member paid) minus (sum of split
	// amounts assigned to them). Positive = owed money, negative = owes.
	Balance decimal.Decimal

	// Status is StatusOwed, StatusOwes or StatusSettled.
	Status string
}

// GroupBalances computes each involved user's net balance from a group's
// expenses and splits. It is a pure read-side projection: no caching, no
// persistence. Callers recompute it from the full row set every time.
//
// Algorithm:
//   - every user appearing as a payer or a split assignee starts at zero
//   - each expense adds its amount to the payer's total
//   - each split subtracts its amount from the assignee's total
//
// This nets out correctly regardless of how splits were divided. With
// decimal arithmetic the settled check is exact; no epsilon is needed.
func GroupBalances(expenses []*models.Expense, splits []*models.ExpenseSplit, users map[string]*models.User) []MemberBalance {
	balances := make(map[string]decimal.Decimal)

	for _, expense := range expenses {
		balances[expense.UserID] = balances[expense.UserID].Add(expense.Amount)
	}
	for _, split := range splits {
		balances[split.UserID] = balances[split.UserID].Sub(split.Amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	for userID, balance := range balances {
		mb := MemberBalance{
			UserID:  userID,
			Balance: balance,
			Status:  classify(balance),
		}
		if user, ok := users[userID]; ok {
			mb.UserName = user.DisplayName
			mb.UserEmail = user.Email
		}
		result = append(result, mb)
	}

	// Deterministic output order for API responses and tests.
	sort.Slice(result, func(i, j int) bool {
		if result[i].UserName != result[j].UserName {
			return result[i].UserName < result[j].UserName
		}
		return result[i].UserID < result[j].UserID
	})

	return result
}

func classify(balance decimal.Decimal) string {
	switch balance.Sign() {
	case 1:
		return StatusOwed
	case -1:
		return StatusOwes
	default:
		return StatusSettled
	}
}
