package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/models"
)

func TestSplitEqually(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		userIDs []string
		want    []string
	}{
		{
			name:    "even division",
			amount:  "90",
			userIDs: []string{"a", "b", "c"},
			want:    []string{"30", "30", "30"},
		},
		{
			name:    "remainder paise go to earliest members",
			amount:  "100",
			userIDs: []string{"a", "b", "c"},
			want:    []string{"33.34", "33.33", "33.33"},
		},
		{
			name:    "two paise remainder",
			amount:  "0.05",
			userIDs: []string{"a", "b", "c"},
			want:    []string{"0.02", "0.02", "0.01"},
		},
		{
			name:    "single member keeps the whole amount",
			amount:  "42.42",
			userIDs: []string{"a"},
			want:    []string{"42.42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			splits := SplitEqually(amount, tt.userIDs)

			if len(splits) != len(tt.want) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.want))
			}

			sum := decimal.Zero
			for i, split := range splits {
				want := decimal.RequireFromString(tt.want[i])
				if !split.Amount.Equal(want) {
					t.Errorf("split[%d] = %s, want %s", i, split.Amount, want)
				}
				sum = sum.Add(split.Amount)
			}
			if !sum.Equal(amount) {
				t.Errorf("splits sum to %s, want %s", sum, amount)
			}
		})
	}

	t.Run("no members yields no splits", func(t *testing.T) {
		if splits := SplitEqually(decimal.RequireFromString("10"), nil); splits != nil {
			t.Errorf("expected nil, got %v", splits)
		}
	})
}

func TestExpenseCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	outsider := env.createUser(t, "eve@example.com", "Eve")
	group := env.createGroup(t, alice, bob)

	base := CreateExpenseInput{
		PayerID:       alice.ID,
		GroupID:       group.ID,
		Description:   "Dinner",
		Category:      "Food",
		Amount:        decimal.RequireFromString("100"),
		PaymentMethod: models.MethodUPI,
		Date:          1,
	}

	t.Run("group expense defaults to equal split", func(t *testing.T) {
		expense, err := env.expenses.Create(ctx, base)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("expected expense ID to be generated")
		}

		splits, err := env.store.ListSplitsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSplitsByGroup failed: %v", err)
		}
		if len(splits) != 2 {
			t.Fatalf("expected 2 splits, got %d", len(splits))
		}

		sum := decimal.Zero
		for _, s := range splits {
			sum = sum.Add(s.Amount)
		}
		if !sum.Equal(base.Amount) {
			t.Errorf("splits sum to %s, want %s", sum, base.Amount)
		}
	})

	t.Run("custom splits must sum to the amount", func(t *testing.T) {
		input := base
		input.Splits = []SplitInput{
			{UserID: alice.ID, Amount: decimal.RequireFromString("60")},
			{UserID: bob.ID, Amount: decimal.RequireFromString("30")},
		}
		_, err := env.expenses.Create(ctx, input)
		wantKind(t, err, apperr.Validation)
	})

	t.Run("split assignee must be a member", func(t *testing.T) {
		input := base
		input.Splits = []SplitInput{
			{UserID: alice.ID, Amount: decimal.RequireFromString("50")},
			{UserID: outsider.ID, Amount: decimal.RequireFromString("50")},
		}
		_, err := env.expenses.Create(ctx, input)
		wantKind(t, err, apperr.Validation)
	})

	t.Run("duplicate assignee rejected", func(t *testing.T) {
		input := base
		input.Splits = []SplitInput{
			{UserID: alice.ID, Amount: decimal.RequireFromString("50")},
			{UserID: alice.ID, Amount: decimal.RequireFromString("50")},
		}
		_, err := env.expenses.Create(ctx, input)
		wantKind(t, err, apperr.Validation)
	})

	t.Run("payer must be a member", func(t *testing.T) {
		input := base
		input.PayerID = outsider.ID
		_, err := env.expenses.Create(ctx, input)
		wantKind(t, err, apperr.Authorization)
	})

	t.Run("personal expense cannot carry splits", func(t *testing.T) {
		input := base
		input.GroupID = ""
		input.Splits = []SplitInput{{UserID: alice.ID, Amount: decimal.RequireFromString("100")}}
		_, err := env.expenses.Create(ctx, input)
		wantKind(t, err, apperr.Validation)
	})

	t.Run("input validation", func(t *testing.T) {
		for name, mutate := range map[string]func(*CreateExpenseInput){
			"zero amount":    func(in *CreateExpenseInput) { in.Amount = decimal.Zero },
			"blank category": func(in *CreateExpenseInput) { in.Category = "  " },
			"bad method":     func(in *CreateExpenseInput) { in.PaymentMethod = "IOU" },
		} {
			input := base
			mutate(&input)
			if _, err := env.expenses.Create(ctx, input); !apperr.IsKind(err, apperr.Validation) {
				t.Errorf("%s: error = %v, want validation error", name, err)
			}
		}
	})
}
