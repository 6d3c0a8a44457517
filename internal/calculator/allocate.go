package calculator

import (
	"fmt"
	"math"

	"github.com/praneelbora/expensease/internal/money"
)

// SplitMode selects how owing shares are computed when an expense is not
// split at the item level.
type SplitMode string

const (
	// SplitEqual divides the amount evenly among participants.
	SplitEqual SplitMode = "equal"
	// SplitByValue uses explicit minor-unit amounts per participant.
	SplitByValue SplitMode = "value"
	// SplitByPercent uses a percentage per participant.
	SplitByPercent SplitMode = "percent"
)

// Valid reports whether m is a known split mode.
func (m SplitMode) Valid() bool {
	switch m {
	case SplitEqual, SplitByValue, SplitByPercent:
		return true
	}
	return false
}

// Allocate divides amount among participants according to mode and returns
// per-participant shares that sum exactly to amount.
//
// participants is the stable input order; the remainder rule assigns leftover
// minor units to the later indices (see money.DistributeRemainder), and any
// residual correction lands on the last participant.
//
// Weights are interpreted per mode: ignored for SplitEqual, literal
// minor-unit amounts for SplitByValue, percentages (0-100) for
// SplitByPercent.
func Allocate(amount money.Money, mode SplitMode, participants []string, weights map[string]float64) (map[string]money.Money, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	shares := make([]int64, len(participants))

	switch mode {
	case SplitEqual:
		shares = money.DistributeRemainder(amount.Amount, len(participants))

	case SplitByValue:
		var sum int64
		for i, p := range participants {
			w, ok := weights[p]
			if !ok {
				return nil, fmt.Errorf("%w: no amount for participant %s", ErrAllocationMismatch, p)
			}
			shares[i] = int64(w)
			sum += shares[i]
		}
		// Tolerate a single minor unit of drift from client-side rounding,
		// anything larger is a caller error.
		delta := amount.Amount - sum
		if delta > 1 || delta < -1 {
			return nil, fmt.Errorf("%w: shares sum to %d, amount is %d", ErrAllocationMismatch, sum, amount.Amount)
		}
		shares[len(shares)-1] += delta

	case SplitByPercent:
		var pctSum float64
		var sum int64
		for i, p := range participants {
			pct, ok := weights[p]
			if !ok {
				return nil, fmt.Errorf("%w: no percentage for participant %s", ErrAllocationMismatch, p)
			}
			if pct < 0 || pct > 100 {
				return nil, fmt.Errorf("%w: percentage %v out of range", ErrAllocationMismatch, pct)
			}
			pctSum += pct
			shares[i] = roundHalfUpMinor(float64(amount.Amount) * pct / 100)
			sum += shares[i]
		}
		if math.Abs(pctSum-100) > 0.01 {
			return nil, fmt.Errorf("%w: percentages sum to %v", ErrAllocationMismatch, pctSum)
		}
		// Residual cents from independent rounding go to the last participant.
		shares[len(shares)-1] += amount.Amount - sum

	default:
		return nil, fmt.Errorf("unknown split mode %q", mode)
	}

	out := make(map[string]money.Money, len(participants))
	for i, p := range participants {
		out[p] = money.New(shares[i], amount.Currency)
	}
	return out, nil
}

// roundHalfUpMinor rounds a fractional minor-unit value half-up to an
// integer number of minor units.
func roundHalfUpMinor(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
