// Package money provides fixed-point currency arithmetic in integer minor
// units (cents). All internal math stays in int64 minor units; decimal values
// appear only at parsing and formatting boundaries.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidAmount is returned when a decimal amount cannot be represented
// in minor units (NaN or infinite input).
var ErrInvalidAmount = errors.New("invalid amount")

// decimalDigits maps currency codes to the number of decimal digits used for
// their minor unit. Currencies not listed here use 2.
var decimalDigits = map[string]int{
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
}

// DecimalDigits returns the number of minor-unit decimal digits for the given
// currency code, defaulting to 2 for unknown currencies.
func DecimalDigits(currency string) int {
	if d, ok := decimalDigits[strings.ToUpper(currency)]; ok {
		return d
	}
	return 2
}

// Money is an amount in integer minor units of a single currency.
type Money struct {
	Amount   int64  `json:"amount"`   // minor units
	Currency string `json:"currency"` // ISO 4217 code
}

// New returns a Money value with the given minor-unit amount and currency.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// Add returns m + n. Both values must share a currency; mixing currencies is
// a programming error and panics.
func (m Money) Add(n Money) Money {
	m.assertSameCurrency(n)
	return Money{Amount: m.Amount + n.Amount, Currency: pickCurrency(m, n)}
}

// Sub returns m - n.
func (m Money) Sub(n Money) Money {
	m.assertSameCurrency(n)
	return Money{Amount: m.Amount - n.Amount, Currency: pickCurrency(m, n)}
}

func pickCurrency(m, n Money) string {
	if m.Currency != "" {
		return m.Currency
	}
	return n.Currency
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

func (m Money) assertSameCurrency(n Money) {
	// Zero values with an empty currency are allowed so that accumulators can
	// start from Money{} without knowing the currency up front.
	if m.Currency != "" && n.Currency != "" && m.Currency != n.Currency {
		panic(fmt.Sprintf("money: currency mismatch %s vs %s", m.Currency, n.Currency))
	}
}

// Decimal returns the amount as a display decimal (e.g. 3334 INR -> 33.34).
func (m Money) Decimal() float64 {
	scale := math.Pow10(DecimalDigits(m.Currency))
	return float64(m.Amount) / scale
}

// String formats the amount with its currency's decimal digits.
func (m Money) String() string {
	d := DecimalDigits(m.Currency)
	return fmt.Sprintf("%.*f %s", d, m.Decimal(), m.Currency)
}

// ToMinorUnits converts a decimal amount into integer minor units for the
// given currency, rounding half-up. Returns ErrInvalidAmount for NaN or
// infinite input.
func ToMinorUnits(decimal float64, currency string) (int64, error) {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, decimal)
	}
	scale := math.Pow10(DecimalDigits(currency))
	return int64(math.Floor(decimal*scale + 0.5)), nil
}

// FromDecimal is ToMinorUnits wrapped into a Money value.
func FromDecimal(decimal float64, currency string) (Money, error) {
	amt, err := ToMinorUnits(decimal, currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amt, Currency: currency}, nil
}

// RoundHalfUp rounds a decimal to 2 decimal places, halves away from zero
// towards positive infinity. Display-path helper only; persisted amounts are
// always integer minor units.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// DistributeRemainder splits total minor units into n integer parts as evenly
// as possible. Every part gets the floor-divided base; each leftover minor
// unit is assigned one-by-one starting from the LAST index and walking
// backward. Callers rely on this exact assignment order, so it must not
// change.
//
//	DistributeRemainder(100, 3) -> [33, 33, 34]
//	DistributeRemainder(101, 4) -> [25, 25, 25, 26]
func DistributeRemainder(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	base := total / int64(n)
	rem := total - base*int64(n)
	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
	}
	for i := n - 1; rem > 0 && i >= 0; i-- {
		shares[i]++
		rem--
	}
	return shares
}
