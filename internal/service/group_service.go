package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/praneelbora/expensease/internal/calculator"
	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/storage"
)

// GroupService owns group management and group-level balance views.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// GroupBalanceView bundles a group's per-currency net balances with the
// suggested transactions that would clear them.
type GroupBalanceView struct {
	Balances    map[string][]calculator.Balance               `json:"balances"`
	Suggestions map[string][]calculator.SettlementTransaction `json:"suggestions"`
}

// CreateGroup creates a new group. The creator is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, userID, name string, members []string) (*models.Group, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}

	if !isParticipant(userID, members) {
		members = append([]string{userID}, members...)
	}

	group := &models.Group{
		Name:      name,
		Members:   members,
		CreatedBy: userID,
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group; the user must be a member.
func (s *GroupService) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
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
	return group, nil
}

// AddMembers adds users to an existing group; the caller must already be a
// member. Duplicates are ignored.
func (s *GroupService) AddMembers(ctx context.Context, userID, groupID string, members []string) (*models.Group, error) {
	if _, err := s.GetGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if err := s.store.AddGroupMembers(ctx, groupID, members); err != nil {
		slog.Error("AddMembers failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// Balances computes the group's net balances per currency from its full
// expense and settlement history, plus the greedy settlement suggestions
// that would clear them.
func (s *GroupService) Balances(ctx context.Context, userID, groupID string) (*GroupBalanceView, error) {
	if _, err := s.GetGroup(ctx, userID, groupID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := calculator.ComputeBalances(expenses, settlements)

	suggestions := make(map[string][]calculator.SettlementTransaction, len(balances))
	for currency, bals := range balances {
		txns, err := calculator.SuggestSettlements(bals)
		if err != nil {
			return nil, err
		}
		suggestions[currency] = txns
	}

	slog.Info("Group balances computed",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"currencies", len(balances),
	)
	return &GroupBalanceView{Balances: balances, Suggestions: suggestions}, nil
}
