package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "kharcha-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create and retrieve by email and id", func(t *testing.T) {
		user := mustCreateUser(t, store, "alice@example.com", "Alice")

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != user.ID {
			t.Fatalf("GetUserByEmail = %+v, want ID %s", byEmail, user.ID)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID == nil || byID.Email != "alice@example.com" {
			t.Fatalf("GetUserByID = %+v, want email alice@example.com", byID)
		}
	})

	t.Run("missing user returns nil without error", func(t *testing.T) {
		user, err := store.GetUserByID(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected nil for missing user, got %+v", user)
		}
	})

	t.Run("update UPI address", func(t *testing.T) {
		user := mustCreateUser(t, store, "bob@example.com", "Bob")

		if err := store.UpdateUserUPI(ctx, user.ID, "bob@okbank"); err != nil {
			t.Fatalf("UpdateUserUPI failed: %v", err)
		}

		updated, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if updated.UPIAddress != "bob@okbank" {
			t.Errorf("UPIAddress = %q, want bob@okbank", updated.UPIAddress)
		}
	})

	t.Run("GetUsersByIDs omits missing users", func(t *testing.T) {
		user := mustCreateUser(t, store, "carol@example.com", "Carol")

		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "nonexistent"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("expected 1 user, got %d", len(users))
		}
		if users[user.ID] == nil {
			t.Errorf("expected user %s in result", user.ID)
		}
	})
}

func TestSQLiteStoreExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	bob := mustCreateUser(t, store, "bob@example.com", "Bob")

	group := &models.Group{
		Name:      "Roommates",
		CreatedBy: alice.ID,
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID, Role: models.RoleMember},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("expense with splits persists atomically", func(t *testing.T) {
		expense := &models.Expense{
			UserID:        alice.ID,
			GroupID:       group.ID,
			Description:   "Groceries",
			Category:      "Food",
			Amount:        decimal.RequireFromString("90.50"),
			PaymentMethod: models.MethodUPI,
			Date:          time.Now().Unix(),
		}
		splits := []models.ExpenseSplit{
			{UserID: alice.ID, Amount: decimal.RequireFromString("45.25")},
			{UserID: bob.ID, Amount: decimal.RequireFromString("45.25")},
		}

		if err := store.CreateExpense(ctx, expense, splits); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("expected expense ID to be generated")
		}

		stored, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("expected 1 expense, got %d", len(stored))
		}
		if !stored[0].Amount.Equal(decimal.RequireFromString("90.50")) {
			t.Errorf("amount = %s, want 90.50", stored[0].Amount)
		}

		storedSplits, err := store.ListSplitsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSplitsByGroup failed: %v", err)
		}
		if len(storedSplits) != 2 {
			t.Fatalf("expected 2 splits, got %d", len(storedSplits))
		}
	})

	t.Run("list by user filters category and window", func(t *testing.T) {
		base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC).Unix()
		for _, e := range []*models.Expense{
			{UserID: bob.ID, Description: "Lunch", Category: "Food", Amount: decimal.RequireFromString("200"), PaymentMethod: models.MethodCash, Date: base},
			{UserID: bob.ID, Description: "Cab", Category: "Travel", Amount: decimal.RequireFromString("150"), PaymentMethod: models.MethodUPI, Date: base},
			{UserID: bob.ID, Description: "Old lunch", Category: "Food", Amount: decimal.RequireFromString("100"), PaymentMethod: models.MethodCash, Date: base - 90*24*3600},
		} {
			if err := store.CreateExpense(ctx, e, nil); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
		to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC).Unix()

		food, err := store.ListExpensesByUser(ctx, bob.ID, "Food", from, to)
		if err != nil {
			t.Fatalf("ListExpensesByUser failed: %v", err)
		}
		if len(food) != 1 || food[0].Description != "Lunch" {
			t.Fatalf("Food expenses = %d, want exactly the in-window lunch", len(food))
		}

		all, err := store.ListExpensesByUser(ctx, bob.ID, "", from, to)
		if err != nil {
			t.Fatalf("ListExpensesByUser failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("all in-window expenses = %d, want 2", len(all))
		}
	})
}

func TestSQLiteStoreBudgets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")

	t.Run("upsert replaces the limit", func(t *testing.T) {
		budget := &models.Budget{
			UserID:   alice.ID,
			Category: "Food",
			Limit:    decimal.RequireFromString("5000"),
			Month:    3,
			Year:     2026,
		}
		if err := store.UpsertBudget(ctx, budget); err != nil {
			t.Fatalf("UpsertBudget failed: %v", err)
		}

		budget.Limit = decimal.RequireFromString("6000")
		if err := store.UpsertBudget(ctx, budget); err != nil {
			t.Fatalf("UpsertBudget (update) failed: %v", err)
		}

		stored, err := store.GetBudget(ctx, alice.ID, "Food", 3, 2026)
		if err != nil {
			t.Fatalf("GetBudget failed: %v", err)
		}
		if stored == nil || !stored.Limit.Equal(decimal.RequireFromString("6000")) {
			t.Fatalf("GetBudget = %+v, want limit 6000", stored)
		}

		budgets, err := store.ListBudgets(ctx, alice.ID, 3, 2026)
		if err != nil {
			t.Fatalf("ListBudgets failed: %v", err)
		}
		if len(budgets) != 1 {
			t.Errorf("expected 1 budget after upsert, got %d", len(budgets))
		}
	})

	t.Run("missing budget returns nil without error", func(t *testing.T) {
		budget, err := store.GetBudget(ctx, alice.ID, "Travel", 3, 2026)
		if err != nil {
			t.Fatalf("GetBudget failed: %v", err)
		}
		if budget != nil {
			t.Errorf("expected nil for missing budget, got %+v", budget)
		}
	})
}

func TestSQLiteStoreSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	bob := mustCreateUser(t, store, "bob@example.com", "Bob")

	group := &models.Group{
		Name:      "Trip",
		CreatedBy: alice.ID,
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID, Role: models.RoleMember},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	newSettlement := func(t *testing.T) *models.Settlement {
		t.Helper()
		settlement := &models.Settlement{
			GroupID:    group.ID,
			FromUserID: bob.ID,
			ToUserID:   alice.ID,
			Amount:     decimal.RequireFromString("250.00"),
			Status:     models.SettlementPending,
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		return settlement
	}

	t.Run("transition succeeds exactly once", func(t *testing.T) {
		settlement := newSettlement(t)

		ok, err := store.TransitionSettlement(ctx, settlement.ID,
			models.SettlementPending, models.SettlementPaid, models.MethodUPI, "TXN123", time.Now().Unix())
		if err != nil {
			t.Fatalf("TransitionSettlement failed: %v", err)
		}
		if !ok {
			t.Fatal("first transition should succeed")
		}

		// The same transition again must lose: the row is no longer pending.
		ok, err = store.TransitionSettlement(ctx, settlement.ID,
			models.SettlementPending, models.SettlementPaid, models.MethodUPI, "TXN456", time.Now().Unix())
		if err != nil {
			t.Fatalf("TransitionSettlement failed: %v", err)
		}
		if ok {
			t.Fatal("second transition must not succeed")
		}

		stored, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if stored.Status != models.SettlementPaid {
			t.Errorf("status = %s, want paid", stored.Status)
		}
		if stored.TransactionID != "TXN123" {
			t.Errorf("transaction id = %s, want TXN123 (first writer wins)", stored.TransactionID)
		}
	})

	t.Run("find pending pair", func(t *testing.T) {
		settlement := newSettlement(t)

		found, err := store.FindPendingSettlement(ctx, group.ID, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("FindPendingSettlement failed: %v", err)
		}
		if found == nil || found.ID != settlement.ID {
			t.Fatalf("FindPendingSettlement = %+v, want ID %s", found, settlement.ID)
		}

		// Opposite direction has no pending settlement.
		reverse, err := store.FindPendingSettlement(ctx, group.ID, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("FindPendingSettlement failed: %v", err)
		}
		if reverse != nil {
			t.Errorf("expected nil for reverse direction, got %+v", reverse)
		}

		// Cancel it so later subtests start clean.
		if _, err := store.TransitionSettlement(ctx, settlement.ID,
			models.SettlementPending, models.SettlementCancelled, "", "", 0); err != nil {
			t.Fatalf("TransitionSettlement failed: %v", err)
		}
	})

	t.Run("duplicate pending pair rejected by index", func(t *testing.T) {
		first := newSettlement(t)

		dup := &models.Settlement{
			GroupID:    group.ID,
			FromUserID: bob.ID,
			ToUserID:   alice.ID,
			Amount:     decimal.RequireFromString("10.00"),
			Status:     models.SettlementPending,
		}
		if err := store.CreateSettlement(ctx, dup); err == nil {
			t.Error("expected unique index violation for duplicate pending pair")
		}

		if _, err := store.TransitionSettlement(ctx, first.ID,
			models.SettlementPending, models.SettlementCancelled, "", "", 0); err != nil {
			t.Fatalf("TransitionSettlement failed: %v", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		for i := 1; i < len(settlements); i++ {
			if settlements[i-1].CreatedAt < settlements[i].CreatedAt {
				t.Fatal("settlements not ordered newest first")
			}
		}
	})
}

func TestSQLiteStoreNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	now := time.Now().Unix()

	notification := &models.Notification{
		UserID:       alice.ID,
		Type:         models.NotifyBudgetWarning,
		Title:        "Food budget warning",
		Message:      "You have used 80% of your Food budget this month",
		Category:     "Food",
		BudgetLimit:  decimal.RequireFromString("100"),
		CurrentSpent: decimal.RequireFromString("80"),
		Percentage:   decimal.RequireFromString("80.0"),
		CreatedAt:    now,
	}
	if err := store.CreateNotification(ctx, notification); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	t.Run("count recent within window", func(t *testing.T) {
		count, err := store.CountRecentNotifications(ctx, alice.ID, models.NotifyBudgetWarning, "Food", now-3600)
		if err != nil {
			t.Fatalf("CountRecentNotifications failed: %v", err)
		}
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}

		// A different type in the same category does not match.
		count, err = store.CountRecentNotifications(ctx, alice.ID, models.NotifyBudgetCritical, "Food", now-3600)
		if err != nil {
			t.Fatalf("CountRecentNotifications failed: %v", err)
		}
		if count != 0 {
			t.Errorf("count for other type = %d, want 0", count)
		}
	})

	t.Run("mark read scoped to owner", func(t *testing.T) {
		ok, err := store.MarkNotificationRead(ctx, notification.ID, "someone-else")
		if err != nil {
			t.Fatalf("MarkNotificationRead failed: %v", err)
		}
		if ok {
			t.Error("another user must not be able to mark the notification read")
		}

		ok, err = store.MarkNotificationRead(ctx, notification.ID, alice.ID)
		if err != nil {
			t.Fatalf("MarkNotificationRead failed: %v", err)
		}
		if !ok {
			t.Fatal("owner should be able to mark the notification read")
		}

		notifications, err := store.ListNotificationsByUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListNotificationsByUser failed: %v", err)
		}
		if len(notifications) != 1 || !notifications[0].IsRead {
			t.Errorf("expected a single read notification, got %+v", notifications)
		}
	})
}
