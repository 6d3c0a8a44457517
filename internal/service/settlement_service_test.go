package service

import (
	"context"
	"errors"
	"testing"

	"github.com/praneelbora/expensease/internal/money"
)

func TestRecordSettlementValidation(t *testing.T) {
	svc := NewSettlementService(newTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		input   SettlementInput
		wantErr error
	}{
		{
			name:    "unauthenticated",
			userID:  "",
			input:   SettlementInput{FromUserID: "a", ToUserID: "b", Amount: money.New(100, "INR")},
			wantErr: ErrAuthRequired,
		},
		{
			name:    "missing party",
			userID:  "a",
			input:   SettlementInput{FromUserID: "a", Amount: money.New(100, "INR")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "self settlement",
			userID:  "a",
			input:   SettlementInput{FromUserID: "a", ToUserID: "a", Amount: money.New(100, "INR")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "non-positive amount",
			userID:  "a",
			input:   SettlementInput{FromUserID: "a", ToUserID: "b", Amount: money.New(0, "INR")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "third party",
			userID:  "c",
			input:   SettlementInput{FromUserID: "a", ToUserID: "b", Amount: money.New(100, "INR")},
			wantErr: ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tt.userID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordAndListSettlements(t *testing.T) {
	svc := NewSettlementService(newTestStore(t))
	ctx := context.Background()

	settlement, err := svc.Record(ctx, "bob", SettlementInput{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     money.New(2500, "INR"),
		Note:       "dinner repayment",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if settlement.ID == "" {
		t.Error("expected non-empty settlement ID")
	}

	listed, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 settlement, got %d", len(listed))
	}
	if listed[0].Note != "dinner repayment" {
		t.Errorf("note = %q, want 'dinner repayment'", listed[0].Note)
	}
}

func TestSuggestClearsUserBalances(t *testing.T) {
	store := newTestStore(t)
	expenseSvc := NewExpenseService(store)
	settlementSvc := NewSettlementService(store)
	ctx := context.Background()

	// Alice fronts two expenses split with different friends.
	if _, err := expenseSvc.CreateExpense(ctx, "alice", ExpenseInput{
		Description: "Lunch",
		Split:       equalSplit(6000, []string{"alice", "bob"}, "alice"),
	}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if _, err := expenseSvc.CreateExpense(ctx, "alice", ExpenseInput{
		Description: "Cab",
		Split:       equalSplit(4000, []string{"alice", "carol"}, "alice"),
	}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	suggestions, err := settlementSvc.Suggest(ctx, "alice")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	txns := suggestions["INR"]
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	var toAlice int64
	for _, txn := range txns {
		if txn.To != "alice" {
			t.Errorf("unexpected receiver %s", txn.To)
		}
		toAlice += txn.Amount.Amount
	}
	if toAlice != 5000 {
		t.Errorf("total owed to alice = %d, want 5000", toAlice)
	}
}
