package calculator

import (
	"sort"

	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
)

// Balance is one participant's net position in a single currency.
// Positive means others owe them, negative means they owe.
type Balance struct {
	ParticipantID string
	Net           money.Money
}

// ComputeBalances derives net balances from expense and settlement history,
// grouped per currency. Balances are never converted or mixed across
// currencies.
//
// For each expense, a payer contributed their pay amount and every owing
// participant owes their owe amount. A settlement improves the payer's
// position and reduces the receiver's. Net = total paid - total owed.
// Results are sorted by participant id for determinism.
func ComputeBalances(expenses []models.Expense, settlements []models.Settlement) map[string][]Balance {
	// paid/owed per currency per participant, in minor units.
	paid := make(map[string]map[string]int64)
	owed := make(map[string]map[string]int64)

	bump := func(m map[string]map[string]int64, currency, id string, amt int64) {
		if m[currency] == nil {
			m[currency] = make(map[string]int64)
		}
		m[currency][id] += amt
	}

	for _, e := range expenses {
		for _, row := range e.Splits {
			if row.Paying {
				bump(paid, e.Amount.Currency, row.FriendID, row.PayAmount.Amount)
			}
			if row.Owing {
				bump(owed, e.Amount.Currency, row.FriendID, row.OweAmount.Amount)
			}
		}
	}

	for _, s := range settlements {
		bump(paid, s.Amount.Currency, s.FromUserID, s.Amount.Amount)
		bump(owed, s.Amount.Currency, s.ToUserID, s.Amount.Amount)
	}

	currencies := make(map[string]bool)
	for c := range paid {
		currencies[c] = true
	}
	for c := range owed {
		currencies[c] = true
	}

	out := make(map[string][]Balance, len(currencies))
	for c := range currencies {
		ids := make(map[string]bool)
		for id := range paid[c] {
			ids[id] = true
		}
		for id := range owed[c] {
			ids[id] = true
		}

		balances := make([]Balance, 0, len(ids))
		for id := range ids {
			balances = append(balances, Balance{
				ParticipantID: id,
				Net:           money.New(paid[c][id]-owed[c][id], c),
			})
		}
		sort.Slice(balances, func(i, j int) bool {
			return balances[i].ParticipantID < balances[j].ParticipantID
		})
		out[c] = balances
	}
	return out
}
