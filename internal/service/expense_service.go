package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/praneelbora/expensease/internal/calculator"
	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/storage"
)

// ExpenseService owns expense creation, retrieval and split previews.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// ExpenseInput is the service-level request for creating an expense.
type ExpenseInput struct {
	Description string
	Category    string
	GroupID     string
	Date        time.Time
	Split       calculator.SplitInput
}

// isParticipant checks if the user is in the participants list.
func isParticipant(userID string, participants []string) bool {
	for _, p := range participants {
		if p == userID {
			return true
		}
	}
	return false
}

// findNewParticipants returns participants that are not already in existingMembers.
func findNewParticipants(participants, existingMembers []string) []string {
	memberSet := make(map[string]bool, len(existingMembers))
	for _, m := range existingMembers {
		memberSet[m] = true
	}
	var newOnes []string
	for _, p := range participants {
		if !memberSet[p] {
			newOnes = append(newOnes, p)
		}
	}
	return newOnes
}

// autoAddParticipantsToGroup adds any expense participants (and payers) not
// already in the group. Failures are logged, not returned; the expense itself
// is already saved.
func (s *ExpenseService) autoAddParticipantsToGroup(ctx context.Context, groupID string, rows []models.SplitRow) {
	if groupID == "" {
		return
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Warn("autoAddParticipantsToGroup: failed to get group", "group_id", groupID, "error", err)
		return
	}

	people := make([]string, 0, len(rows))
	for _, row := range rows {
		people = append(people, row.FriendID)
	}

	newMembers := findNewParticipants(people, group.Members)
	if len(newMembers) == 0 {
		return
	}

	if err := s.store.AddGroupMembers(ctx, groupID, newMembers); err != nil {
		slog.Error("autoAddParticipantsToGroup: failed to add members", "group_id", groupID, "error", err)
		return
	}
	slog.Info("Auto-added participants to group", "group_id", groupID, "new_members", newMembers)
}

// PreviewSplit computes split rows without persisting anything. Drafts may
// have no payer yet.
func (s *ExpenseService) PreviewSplit(in calculator.SplitInput) ([]models.SplitRow, error) {
	return calculator.BuildSplit(in)
}

// CreateExpense validates the input, computes the final split rows and
// persists the expense. The creator must be a participant or a payer, and at
// least one payer is required.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description required", ErrInvalidInput)
	}
	if in.Split.GrandTotal.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	rows, err := calculator.BuildSplit(in.Split)
	if err != nil {
		return nil, err
	}

	hasPayer := false
	involved := false
	for _, row := range rows {
		if row.Paying {
			hasPayer = true
		}
		if row.FriendID == userID {
			involved = true
		}
	}
	if !hasPayer {
		return nil, ErrPayerRequired
	}
	if !involved && in.GroupID == "" {
		return nil, fmt.Errorf("%w: you must be a participant to create this expense", ErrPermissionDenied)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	expense := &models.Expense{
		Description: in.Description,
		Amount:      in.Split.GrandTotal,
		Category:    in.Category,
		TypeOf:      models.TypeExpense,
		GroupID:     in.GroupID,
		Items:       in.Split.Items,
		Splits:      rows,
		Date:        date,
		CreatedBy:   userID,
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, err
	}

	s.autoAddParticipantsToGroup(ctx, expense.GroupID, rows)

	slog.Info("Expense created", "expense_id", expense.ID, "amount", expense.Amount, "created_by", userID)
	return expense, nil
}

// GetExpense retrieves an expense the user created or appears in.
func (s *ExpenseService) GetExpense(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if expense.CreatedBy != userID && !splitsInclude(expense.Splits, userID) {
		return nil, fmt.Errorf("%w: you must be a participant to view this expense", ErrPermissionDenied)
	}
	return expense, nil
}

// ListExpenses returns the user's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	return s.store.ListExpensesByUser(ctx, userID)
}

// ListGroupExpenses returns a group's expenses; the user must be a member.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, userID, groupID string) ([]models.Expense, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(userID, group.Members) {
		return nil, fmt.Errorf("%w: you must be a member of this group", ErrPermissionDenied)
	}

	return s.store.ListExpensesByGroup(ctx, groupID)
}

func splitsInclude(rows []models.SplitRow, userID string) bool {
	for _, row := range rows {
		if row.FriendID == userID {
			return true
		}
	}
	return false
}
