package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
	"github.com/praneelbora/expensease/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "expensease-test-*")
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

func TestSQLiteStoreExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateExpense generates IDs", func(t *testing.T) {
		expense := &models.Expense{
			Description: "Dinner",
			Amount:      money.New(11000, "INR"),
			Date:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			CreatedBy:   "user-1",
			Items: []models.LineItem{
				{Name: "Thali", Amount: money.New(6000, "INR"), Consumers: []string{"user-1"}},
				{Name: "Dosa", Amount: money.New(4000, "INR"), Consumers: []string{"user-2", "user-1"}},
			},
			Splits: []models.SplitRow{
				{FriendID: "user-1", Owing: true, Paying: true, OweAmount: money.New(8600, "INR"), PayAmount: money.New(11000, "INR")},
				{FriendID: "user-2", Owing: true, OweAmount: money.New(2400, "INR")},
			},
		}

		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}
		if expense.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if expense.TypeOf != models.TypeExpense {
			t.Errorf("Expected default type %q, got %q", models.TypeExpense, expense.TypeOf)
		}
		for _, item := range expense.Items {
			if item.ID == "" {
				t.Error("Expected line item ID to be generated")
			}
		}
	})

	t.Run("GetExpense retrieves complete expense", func(t *testing.T) {
		original := &models.Expense{
			Description: "Trip supplies",
			Amount:      money.New(5000, "INR"),
			Date:        time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			CreatedBy:   "user-1",
			Items: []models.LineItem{
				{Name: "Snacks", Amount: money.New(5000, "INR"), Consumers: []string{"user-2", "user-1", "user-3"}},
			},
			Splits: []models.SplitRow{
				{FriendID: "user-1", Owing: true, Paying: true, OweAmount: money.New(1666, "INR"), PayAmount: money.New(5000, "INR")},
				{FriendID: "user-2", Owing: true, OweAmount: money.New(1666, "INR")},
				{FriendID: "user-3", Owing: true, OweAmount: money.New(1668, "INR")},
			},
		}

		if err := store.CreateExpense(ctx, original); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		retrieved, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}

		if retrieved.Amount.Amount != 5000 || retrieved.Amount.Currency != "INR" {
			t.Errorf("Amount = %+v, want 5000 INR", retrieved.Amount)
		}
		if !retrieved.Date.Equal(original.Date) {
			t.Errorf("Date = %v, want %v", retrieved.Date, original.Date)
		}
		if len(retrieved.Splits) != 3 {
			t.Fatalf("Splits count = %d, want 3", len(retrieved.Splits))
		}
		// Split order is preserved, so the remainder rule stays reproducible.
		if retrieved.Splits[2].FriendID != "user-3" || retrieved.Splits[2].OweAmount.Amount != 1668 {
			t.Errorf("last split = %+v, want user-3 owing 1668", retrieved.Splits[2])
		}
		// Consumer order is preserved too.
		wantConsumers := []string{"user-2", "user-1", "user-3"}
		for i, c := range retrieved.Items[0].Consumers {
			if c != wantConsumers[i] {
				t.Errorf("consumer[%d] = %s, want %s", i, c, wantConsumers[i])
			}
		}

		var oweSum int64
		for _, s := range retrieved.Splits {
			if s.Owing {
				oweSum += s.OweAmount.Amount
			}
		}
		if oweSum != retrieved.Amount.Amount {
			t.Errorf("retrieved owe amounts sum to %d, want %d", oweSum, retrieved.Amount.Amount)
		}
	})

	t.Run("GetExpense returns ErrNotFound for nonexistent expense", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListExpensesByUser includes created and participating", func(t *testing.T) {
		store := newTestStore(t)

		created := &models.Expense{
			Description: "Solo lunch",
			Amount:      money.New(300, "INR"),
			Date:        time.Now(),
			CreatedBy:   "lister",
		}
		participating := &models.Expense{
			Description: "Shared cab",
			Amount:      money.New(400, "INR"),
			Date:        time.Now(),
			CreatedBy:   "someone-else",
			Splits: []models.SplitRow{
				{FriendID: "lister", Owing: true, OweAmount: money.New(200, "INR")},
				{FriendID: "someone-else", Owing: true, Paying: true, OweAmount: money.New(200, "INR"), PayAmount: money.New(400, "INR")},
			},
		}
		unrelated := &models.Expense{
			Description: "Not mine",
			Amount:      money.New(500, "INR"),
			Date:        time.Now(),
			CreatedBy:   "someone-else",
		}

		for _, e := range []*models.Expense{created, participating, unrelated} {
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		expenses, err := store.ListExpensesByUser(ctx, "lister")
		if err != nil {
			t.Fatalf("ListExpensesByUser failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Errorf("got %d expenses, want 2", len(expenses))
		}
	})
}

func TestSQLiteStoreGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{
		Name:      "Flatmates",
		Members:   []string{"user-1", "user-2"},
		CreatedBy: "user-1",
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" {
		t.Error("Expected group ID to be generated")
	}

	if err := store.AddGroupMembers(ctx, group.ID, []string{"user-2", "user-3"}); err != nil {
		t.Fatalf("AddGroupMembers failed: %v", err)
	}

	retrieved, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(retrieved.Members) != 3 {
		t.Errorf("got %d members, want 3 (duplicate add ignored)", len(retrieved.Members))
	}

	if _, err := store.GetGroup(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreUsersAndPaymentMethods(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("asha@example.com", "Asha", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "asha@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail ID = %s, want %s", byEmail.ID, user.ID)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	for _, label := range []string{"Personal UPI", "Credit Card"} {
		if err := store.AddPaymentMethod(ctx, &models.PaymentMethod{UserID: user.ID, Label: label, Kind: "upi"}); err != nil {
			t.Fatalf("AddPaymentMethod failed: %v", err)
		}
	}

	methods, err := store.ListPaymentMethods(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListPaymentMethods failed: %v", err)
	}
	if len(methods) != 2 {
		t.Errorf("got %d payment methods, want 2", len(methods))
	}
}

func TestSQLiteStoreSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settlement := &models.Settlement{
		FromUserID: "user-2",
		ToUserID:   "user-1",
		Amount:     money.New(3000, "INR"),
		Note:       "Goa trip",
		CreatedBy:  "user-2",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	if settlement.ID == "" {
		t.Error("Expected settlement ID to be generated")
	}

	for _, userID := range []string{"user-1", "user-2"} {
		settlements, err := store.ListSettlementsByUser(ctx, userID)
		if err != nil {
			t.Fatalf("ListSettlementsByUser(%s) failed: %v", userID, err)
		}
		if len(settlements) != 1 {
			t.Fatalf("got %d settlements for %s, want 1", len(settlements), userID)
		}
		if settlements[0].Amount.Amount != 3000 || settlements[0].Amount.Currency != "INR" {
			t.Errorf("amount = %+v, want 3000 INR", settlements[0].Amount)
		}
	}

	if got, err := store.ListSettlementsByUser(ctx, "user-3"); err != nil || len(got) != 0 {
		t.Errorf("ListSettlementsByUser(user-3) = %v, %v; want empty", got, err)
	}
}
