package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/praneelbora/expensease/internal/calculator"
	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
	"github.com/praneelbora/expensease/internal/storage"
)

// SettlementService records settlements and suggests how to clear debt.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage
// backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// SettlementInput is the service-level request for recording a payment.
type SettlementInput struct {
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     money.Money
	Note       string
}

// Record persists a settlement. The caller must be the payer or the receiver,
// the amount must be positive and the parties distinct.
func (s *SettlementService) Record(ctx context.Context, userID string, in SettlementInput) (*models.Settlement, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if in.FromUserID == "" || in.ToUserID == "" {
		return nil, fmt.Errorf("%w: both parties required", ErrInvalidInput)
	}
	if in.FromUserID == in.ToUserID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", ErrInvalidInput)
	}
	if in.Amount.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if userID != in.FromUserID && userID != in.ToUserID {
		return nil, fmt.Errorf("%w: you must be a party to this settlement", ErrPermissionDenied)
	}

	settlement := &models.Settlement{
		GroupID:    in.GroupID,
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Amount:     in.Amount,
		Note:       in.Note,
		CreatedBy:  userID,
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("Record settlement failed", "error", err)
		return nil, err
	}

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"from", settlement.FromUserID,
		"to", settlement.ToUserID,
		"amount", settlement.Amount,
	)
	return settlement, nil
}

// List returns settlements the user paid or received, newest first.
func (s *SettlementService) List(ctx context.Context, userID string) ([]models.Settlement, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	return s.store.ListSettlementsByUser(ctx, userID)
}

// Suggest computes, per currency, the transactions that would clear the net
// balances across everything the user shares in.
func (s *SettlementService) Suggest(ctx context.Context, userID string) (map[string][]calculator.SettlementTransaction, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	expenses, err := s.store.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByUser(ctx, userID)
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
	return suggestions, nil
}
