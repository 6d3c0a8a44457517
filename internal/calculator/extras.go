package calculator

import "github.com/praneelbora/expensease/internal/money"

// ExtraSplitMode selects how tax, service charge and tip are distributed
// across participants.
type ExtraSplitMode string

const (
	// ExtrasProportional distributes extras by each participant's share of
	// the item subtotal.
	ExtrasProportional ExtraSplitMode = "proportional"
	// ExtrasEqual distributes extras evenly regardless of item shares.
	ExtrasEqual ExtraSplitMode = "equal"
)

// Valid reports whether m is a known extras mode.
func (m ExtraSplitMode) Valid() bool {
	return m == ExtrasProportional || m == ExtrasEqual
}

// ExtrasTotals holds the aggregate amounts layered on top of the item
// subtotal. All fields are optional and default to zero. ServicePercent is
// consulted only when ServiceCharge is zero.
type ExtrasTotals struct {
	Tax            money.Money
	ServiceCharge  money.Money
	ServicePercent float64
	Tip            money.Money
}

// ExtraShares is one participant's slice of the extras.
type ExtraShares struct {
	Tax     money.Money
	Service money.Money
	Tip     money.Money
}

// EffectiveServiceCharge resolves the service charge for an expense: an
// absolute amount wins, else a percentage of the subtotal (rounded half-up),
// else zero.
func EffectiveServiceCharge(extras ExtrasTotals, subtotal money.Money) money.Money {
	if !extras.ServiceCharge.IsZero() {
		return extras.ServiceCharge
	}
	if extras.ServicePercent > 0 {
		amt := roundHalfUpMinor(float64(subtotal.Amount) * extras.ServicePercent / 100)
		return money.New(amt, subtotal.Currency)
	}
	return money.Zero(subtotal.Currency)
}

// DistributeExtras splits the extras across participants, either
// proportionally to their item shares or evenly.
//
// The proportional path rounds each share half-up independently per extra
// field; residual cents are not corrected here but absorbed by the final
// normalization in BuildSplit. The equal path floors each share and
// deliberately leaves the per-field drift (up to n-1 minor units)
// uncorrected, matching the historical behavior of the mobile client.
// If the subtotal is zero (all items free), proportional falls back to an
// equal split.
func DistributeExtras(itemShares map[string]money.Money, extras ExtrasTotals, mode ExtraSplitMode, participants []string) map[string]ExtraShares {
	if len(participants) == 0 {
		return map[string]ExtraShares{}
	}

	var subtotal money.Money
	for _, s := range itemShares {
		subtotal = subtotal.Add(s)
	}
	currency := subtotal.Currency
	if currency == "" {
		currency = extras.Tax.Currency
	}
	if currency == "" {
		currency = extras.Tip.Currency
	}

	service := EffectiveServiceCharge(extras, subtotal)

	out := make(map[string]ExtraShares, len(participants))

	if mode == ExtrasProportional && subtotal.Amount != 0 {
		for _, p := range participants {
			ratio := float64(itemShares[p].Amount) / float64(subtotal.Amount)
			out[p] = ExtraShares{
				Tax:     money.New(roundHalfUpMinor(float64(extras.Tax.Amount)*ratio), currency),
				Service: money.New(roundHalfUpMinor(float64(service.Amount)*ratio), currency),
				Tip:     money.New(roundHalfUpMinor(float64(extras.Tip.Amount)*ratio), currency),
			}
		}
		return out
	}

	// Equal split, also the zero-subtotal fallback for proportional.
	n := int64(len(participants))
	for _, p := range participants {
		out[p] = ExtraShares{
			Tax:     money.New(extras.Tax.Amount/n, currency),
			Service: money.New(service.Amount/n, currency),
			Tip:     money.New(extras.Tip.Amount/n, currency),
		}
	}
	return out
}
