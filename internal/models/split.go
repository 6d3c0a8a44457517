package models

import (
	"time"

	"github.com/praneelbora/expensease/internal/money"
)

// Expense type markers. Settlements are stored as expenses with TypeSettle so
// they appear inline in history but are bucketed separately in summaries.
const (
	TypeExpense = "expense"
	TypeSettle  = "settle"
)

// Expense represents a shared expense with its computed split.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label (e.g. "Dinner at Ramen Bar").
	Description string

	// Amount is the grand total of the expense, including extras.
	Amount money.Money

	// Category is a free-form category label chosen by the creator.
	Category string

	// TypeOf is TypeExpense or TypeSettle.
	TypeOf string

	// GroupID links the expense to a group, empty for friend/personal expenses.
	GroupID string

	// Items are the line items the expense was built from. Empty for
	// expenses entered as a single amount.
	Items []LineItem

	// Splits are the per-participant obligations. Immutable once saved.
	Splits []SplitRow

	// Date is when the expense happened (not when it was recorded).
	Date time.Time

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// LineItem represents a single line item on an expense. Items come from
// receipt scanning or manual entry and can be shared among multiple
// consumers. Once the expense is saved items cannot be edited.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the item label (e.g. "Pad Thai", "Beer").
	Name string

	// Amount is the item price.
	Amount money.Money

	// Consumers are the participant IDs sharing this item, in selection
	// order. Must be non-empty before the expense can be finalized.
	Consumers []string
}

// SplitRow is one participant's share of an expense.
type SplitRow struct {
	// FriendID identifies the participant.
	FriendID string

	// Owing marks participants who owe a share of the expense.
	Owing bool

	// Paying marks participants who fronted money for the expense.
	Paying bool

	// OweAmount is this participant's share of the grand total. The sum of
	// OweAmount across rows with Owing set equals the expense amount exactly.
	OweAmount money.Money

	// PayAmount is what this participant fronted. With a single payer it
	// equals the grand total; with multiple payers the amounts sum to it.
	PayAmount money.Money

	// PaymentMethodID is the payment account used, when the payer has more
	// than one on file.
	PaymentMethodID string
}

// Participant is an ephemeral view of a person inside one split computation,
// built from friend or group member lists. Not persisted by the engine.
type Participant struct {
	ID     string
	Name   string
	IsSelf bool
}
