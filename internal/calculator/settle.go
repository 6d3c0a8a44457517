package calculator

import (
	"fmt"
	"sort"

	"github.com/praneelbora/expensease/internal/money"
)

// SettlementTransaction is a suggested payment that reduces outstanding debt
// between two participants. One currency per transaction.
type SettlementTransaction struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}

// SuggestSettlements computes a minimal set of pairwise payments that zero
// out the given balances. Balances must all be in one currency; pre-group
// them per currency (ComputeBalances already does) before calling.
//
// Greedy matching: the largest-magnitude debtor pays the largest-magnitude
// creditor the smaller of the two amounts, both shrink, parties reaching
// zero drop out. This yields at most n-1 transactions for n non-zero
// balances. Ties are broken by participant id ascending so the result is
// deterministic. Residue of a single minor unit (balances that do not sum
// exactly to zero) is dropped.
func SuggestSettlements(balances []Balance) ([]SettlementTransaction, error) {
	currency := ""
	for _, b := range balances {
		if b.Net.Currency == "" {
			continue
		}
		if currency == "" {
			currency = b.Net.Currency
		} else if b.Net.Currency != currency {
			return nil, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, currency, b.Net.Currency)
		}
	}

	type party struct {
		id     string
		amount int64 // positive magnitude
	}

	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.Net.Amount > 0:
			creditors = append(creditors, party{id: b.ParticipantID, amount: b.Net.Amount})
		case b.Net.Amount < 0:
			debtors = append(debtors, party{id: b.ParticipantID, amount: -b.Net.Amount})
		}
	}

	byMagnitude := func(s []party) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].amount != s[j].amount {
				return s[i].amount > s[j].amount
			}
			return s[i].id < s[j].id
		}
	}
	sort.Slice(creditors, byMagnitude(creditors))
	sort.Slice(debtors, byMagnitude(debtors))

	var txns []SettlementTransaction
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}

		if amount > 0 {
			txns = append(txns, SettlementTransaction{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: money.New(amount, currency),
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	// Whatever is left on either side at this point is sub-minor-unit noise
	// from unbalanced input and is intentionally ignored.

	return txns, nil
}

// SettleAll is the bulk settle mode: it suggests transactions clearing every
// balance at once.
func SettleAll(balances []Balance) ([]SettlementTransaction, error) {
	return SuggestSettlements(balances)
}

// SettleOne records a direct, user-specified payment between two
// participants, bypassing suggestion. Used for the custom settle mode.
func SettleOne(from, to string, amount money.Money) SettlementTransaction {
	return SettlementTransaction{From: from, To: to, Amount: amount}
}
