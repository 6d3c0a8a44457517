// Package calculator is the pure expense-splitting engine: share allocation,
// extras distribution, split building, balance computation and settlement
// suggestion. Every function is a synchronous transformation over its inputs
// with no I/O and no shared state, so concurrent calls are safe.
package calculator

import (
	"fmt"
	"sort"

	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
)

// PayerInput describes one participant's payer role for an expense.
type PayerInput struct {
	// Paying marks the participant as an active payer.
	Paying bool

	// Amount is the explicit contribution, required when more than one payer
	// is active. Ignored for a single payer, who fronts the whole total.
	Amount *money.Money

	// PaymentMethodID is the selected payment account.
	PaymentMethodID string

	// MethodCount is how many payment methods the payer has on file. A payer
	// with more than one must have PaymentMethodID set before finalizing.
	MethodCount int
}

// SplitInput is everything BuildSplit needs to turn an expense or parsed
// receipt into finalized split rows.
type SplitInput struct {
	// Items are the line items with their consumers. May be empty for
	// expenses entered as a single amount.
	Items []models.LineItem

	// Mode and Weights drive the share allocation when Items is empty.
	Mode    SplitMode
	Weights map[string]float64

	// Extras are the aggregate tax / service charge / tip.
	Extras ExtrasTotals

	// ExtraMode selects proportional or equal extras distribution.
	ExtraMode ExtraSplitMode

	// Participants is the stable, ordered owing set. Residual cents from the
	// normalization pass land on the last entry.
	Participants []string

	// Payers maps participant id to payer role. Participants absent from the
	// map are not paying.
	Payers map[string]PayerInput

	// GrandTotal is the full expense amount including extras. The owe
	// amounts are normalized to sum to it exactly.
	GrandTotal money.Money
}

// BuildSplit computes the per-participant split rows for an expense.
//
// Item amounts are divided evenly among each item's consumers using plain
// floor division; per-item drift is intentional and only corrected by the
// final normalization pass, so intermediate item-level numbers may be off by
// a cent until then. The normalization delta, whatever accumulated, is
// applied in full to the last owing participant.
//
// Calling BuildSplit twice with identical input yields identical rows.
func BuildSplit(in SplitInput) ([]models.SplitRow, error) {
	if len(in.Participants) == 0 {
		return nil, ErrNoParticipants
	}
	currency := in.GrandTotal.Currency

	participantSet := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		participantSet[p] = true
	}

	// Step 1-2: per-participant item shares.
	itemShares := make(map[string]money.Money, len(in.Participants))
	for _, p := range in.Participants {
		itemShares[p] = money.Zero(currency)
	}

	if len(in.Items) == 0 {
		// No line items: allocate the pre-extras amount by mode.
		base := in.GrandTotal.Sub(in.Extras.Tax).Sub(in.Extras.Tip).Sub(in.Extras.ServiceCharge)
		mode := in.Mode
		if mode == "" {
			mode = SplitEqual
		}
		allocated, err := Allocate(base, mode, in.Participants, in.Weights)
		if err != nil {
			return nil, err
		}
		itemShares = allocated
	} else {
		for _, item := range in.Items {
			if len(item.Consumers) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrUnassignedItem, item.Name)
			}
			if item.Amount.Currency != "" && item.Amount.Currency != currency {
				return nil, fmt.Errorf("%w: item %s is %s, expense is %s",
					ErrCurrencyMismatch, item.Name, item.Amount.Currency, currency)
			}
			// Plain floor division per item, no remainder correction here.
			perConsumer := item.Amount.Amount / int64(len(item.Consumers))
			for _, c := range item.Consumers {
				if !participantSet[c] {
					continue
				}
				itemShares[c] = itemShares[c].Add(money.New(perConsumer, currency))
			}
		}
	}

	// Step 3: extras distribution.
	extraShares := DistributeExtras(itemShares, in.Extras, in.ExtraMode, in.Participants)

	// Step 4: owe amounts.
	owe := make(map[string]int64, len(in.Participants))
	var oweSum int64
	for _, p := range in.Participants {
		ex := extraShares[p]
		owe[p] = itemShares[p].Amount + ex.Tax.Amount + ex.Service.Amount + ex.Tip.Amount
		oweSum += owe[p]
	}

	// Step 5: normalization pass. The split must never persist a total that
	// is off by a minor unit, so the whole delta goes to the last owing
	// participant.
	last := in.Participants[len(in.Participants)-1]
	owe[last] += in.GrandTotal.Amount - oweSum

	// Step 6: payer amounts.
	pay, err := resolvePayerAmounts(in.Payers, in.GrandTotal)
	if err != nil {
		return nil, err
	}

	// Rows for every owing participant, then for payers outside the owing
	// set (sorted for determinism).
	rowOrder := make([]string, 0, len(in.Participants)+len(in.Payers))
	rowOrder = append(rowOrder, in.Participants...)
	var payerOnly []string
	for id, p := range in.Payers {
		if p.Paying && !participantSet[id] {
			payerOnly = append(payerOnly, id)
		}
	}
	sort.Strings(payerOnly)
	rowOrder = append(rowOrder, payerOnly...)

	rows := make([]models.SplitRow, 0, len(rowOrder))
	for _, id := range rowOrder {
		payer := in.Payers[id]
		rows = append(rows, models.SplitRow{
			FriendID:        id,
			Owing:           participantSet[id],
			Paying:          payer.Paying,
			OweAmount:       money.New(owe[id], currency),
			PayAmount:       money.New(pay[id], currency),
			PaymentMethodID: payer.PaymentMethodID,
		})
	}
	return rows, nil
}

// resolvePayerAmounts validates payer input and returns per-participant pay
// amounts in minor units. With a single active payer the whole total is
// theirs; with several, the entered amounts must sum to the total within one
// minor unit, and the residual cent (if any) is folded into the last payer.
func resolvePayerAmounts(payers map[string]PayerInput, grandTotal money.Money) (map[string]int64, error) {
	pay := make(map[string]int64, len(payers))

	var active []string
	for id, p := range payers {
		if p.Paying {
			active = append(active, id)
		}
	}
	sort.Strings(active)

	for _, id := range active {
		p := payers[id]
		if p.MethodCount > 1 && p.PaymentMethodID == "" {
			return nil, fmt.Errorf("%w: payer %s", ErrPaymentMethodRequired, id)
		}
	}

	switch len(active) {
	case 0:
		// Draft splits may not have a payer yet; the service layer requires
		// one before persisting.
	case 1:
		pay[active[0]] = grandTotal.Amount
	default:
		var sum int64
		for _, id := range active {
			p := payers[id]
			if p.Amount == nil {
				return nil, fmt.Errorf("%w: payer %s has no amount", ErrPaidAmountMismatch, id)
			}
			if p.Amount.Currency != "" && p.Amount.Currency != grandTotal.Currency {
				return nil, fmt.Errorf("%w: payer %s", ErrCurrencyMismatch, id)
			}
			pay[id] = p.Amount.Amount
			sum += p.Amount.Amount
		}
		delta := grandTotal.Amount - sum
		if delta > 1 || delta < -1 {
			return nil, fmt.Errorf("%w: paid %d, total is %d", ErrPaidAmountMismatch, sum, grandTotal.Amount)
		}
		pay[active[len(active)-1]] += delta
	}
	return pay, nil
}
