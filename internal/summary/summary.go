// Package summary computes time-windowed spend totals and period-over-period
// deltas from expense history. Pure computation, no I/O.
package summary

import (
	"time"

	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
)

// Range selects the reporting window.
type Range string

const (
	RangeThisMonth       Range = "month"
	RangeLastThreeMonths Range = "3months"
	RangeThisYear        Range = "year"
)

// Valid reports whether r is a known range.
func (r Range) Valid() bool {
	switch r {
	case RangeThisMonth, RangeLastThreeMonths, RangeThisYear:
		return true
	}
	return false
}

// Bucket is an aggregate for one currency.
type Bucket struct {
	Amount money.Money `json:"amount"`
	Count  int         `json:"count"`
}

// Report is the result of Summarize. Each section is keyed by currency code.
// Delta holds the percentage change versus the previous period per currency;
// currencies without enough history are absent from the map.
type Report struct {
	Total    map[string]Bucket  `json:"total"`
	Personal map[string]Bucket  `json:"personal"`
	Group    map[string]Bucket  `json:"group"`
	Friend   map[string]Bucket  `json:"friend"`
	Settle   map[string]Bucket  `json:"settle"`
	Delta    map[string]float64 `json:"delta,omitempty"`
}

// Summarize aggregates the user's expenses inside the selected window,
// segmented by how each expense was shared.
//
// Classification per expense: settlements land in the settle bucket
// regardless of grouping; a group id means group; splits without a group
// mean friend; everything else is personal. Group and friend expenses count
// only the user's owed share, personal expenses count their full amount.
//
// The delta compares the window's total against the immediately preceding
// window of the same length. A currency gets a delta only when both periods
// contain at least one expense, otherwise no delta is reported rather than
// guessing from partial history.
func Summarize(expenses []models.Expense, userID string, r Range, now time.Time) Report {
	report := Report{
		Total:    map[string]Bucket{},
		Personal: map[string]Bucket{},
		Group:    map[string]Bucket{},
		Friend:   map[string]Bucket{},
		Settle:   map[string]Bucket{},
	}

	start, end := periodBounds(r, now)
	prevStart := previousStart(r, start)

	prev := map[string]Bucket{}

	for _, e := range expenses {
		amount, currency, section := classify(e, userID)
		if section == "" {
			continue
		}

		switch {
		case !e.Date.Before(start) && e.Date.Before(end):
			bump := func(m map[string]Bucket) {
				b := m[currency]
				b.Amount = b.Amount.Add(money.New(amount, currency))
				b.Count++
				m[currency] = b
			}
			switch section {
			case "settle":
				bump(report.Settle)
			case "group":
				bump(report.Group)
				bump(report.Total)
			case "friend":
				bump(report.Friend)
				bump(report.Total)
			case "personal":
				bump(report.Personal)
				bump(report.Total)
			}

		case !e.Date.Before(prevStart) && e.Date.Before(start):
			if section != "settle" {
				b := prev[currency]
				b.Amount = b.Amount.Add(money.New(amount, currency))
				b.Count++
				prev[currency] = b
			}
		}
	}

	for currency, cur := range report.Total {
		p, ok := prev[currency]
		if !ok || p.Count == 0 || cur.Count == 0 || p.Amount.Amount == 0 {
			continue
		}
		change := float64(cur.Amount.Amount-p.Amount.Amount) / float64(p.Amount.Amount) * 100
		if report.Delta == nil {
			report.Delta = map[string]float64{}
		}
		report.Delta[currency] = money.RoundHalfUp(change)
	}

	return report
}

// classify returns the amount the user is accountable for, its currency and
// the report section, or an empty section when the expense does not concern
// the user.
func classify(e models.Expense, userID string) (int64, string, string) {
	currency := e.Amount.Currency

	if e.TypeOf == models.TypeSettle {
		if share, ok := userShare(e, userID); ok {
			return share, currency, "settle"
		}
		if e.CreatedBy == userID {
			return e.Amount.Amount, currency, "settle"
		}
		return 0, "", ""
	}

	if e.GroupID != "" {
		if share, ok := userShare(e, userID); ok {
			return share, currency, "group"
		}
		return 0, "", ""
	}

	if len(e.Splits) > 0 {
		if share, ok := userShare(e, userID); ok {
			return share, currency, "friend"
		}
		return 0, "", ""
	}

	if e.CreatedBy == userID {
		return e.Amount.Amount, currency, "personal"
	}
	return 0, "", ""
}

// userShare finds the user's owed share on an expense.
func userShare(e models.Expense, userID string) (int64, bool) {
	for _, s := range e.Splits {
		if s.FriendID == userID && s.Owing {
			return s.OweAmount.Amount, true
		}
	}
	return 0, false
}

// periodBounds returns the half-open [start, end) window for the range.
func periodBounds(r Range, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	switch r {
	case RangeLastThreeMonths:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -2, 0)
		return start, start.AddDate(0, 3, 0)
	case RangeThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default: // RangeThisMonth
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}

// previousStart returns the start of the comparison window immediately
// before start, same length as the range.
func previousStart(r Range, start time.Time) time.Time {
	switch r {
	case RangeLastThreeMonths:
		return start.AddDate(0, -3, 0)
	case RangeThisYear:
		return start.AddDate(-1, 0, 0)
	default:
		return start.AddDate(0, -1, 0)
	}
}
