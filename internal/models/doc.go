// Package models defines the core domain models for Kharcha.
//
// # Entities
//
//   - User: a registered account, optionally carrying a UPI payment address
//   - Group: a set of members who share expenses
//   - Expense / ExpenseSplit: a payment by one member and the portions owed by others
//   - Income: money received, tracked for the personal ledger only
//   - Budget: a per-category monthly spending limit
//   - Settlement: one member's payoff of their owed balance to another
//   - Notification: a budget or payment alert delivered to a single user
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers, to avoid circular references
//  2. All money amounts are decimal.Decimal, never float64, so sums are exact
//  3. Timestamps are Unix seconds (int64), matching the storage layer
package models
