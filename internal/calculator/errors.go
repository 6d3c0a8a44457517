package calculator

import "errors"

// Validation failures local to a single split or settlement computation.
// None of these are fatal; callers surface them so the user can correct the
// input and retry. The engine is deterministic, so re-invoking with the same
// input reproduces the same error.
var (
	// ErrNoParticipants is returned when a split has nobody to divide among.
	ErrNoParticipants = errors.New("must have at least one participant")

	// ErrAllocationMismatch is returned when explicit weights do not add up
	// to the amount being allocated. The caller must surface this rather
	// than rescale silently.
	ErrAllocationMismatch = errors.New("allocated shares do not match amount")

	// ErrUnassignedItem is returned when a line item has no consumers at
	// finalization time.
	ErrUnassignedItem = errors.New("line item has no consumers")

	// ErrPaidAmountMismatch is returned when multiple payer amounts do not
	// add up to the expense total.
	ErrPaidAmountMismatch = errors.New("payer amounts do not match total")

	// ErrPaymentMethodRequired is returned when an active payer with more
	// than one saved payment method has not picked one.
	ErrPaymentMethodRequired = errors.New("payment method selection required")

	// ErrCurrencyMismatch is returned when a computation mixes currencies.
	// Balances and settlements are tracked per currency and never converted.
	ErrCurrencyMismatch = errors.New("mixed currencies in computation")
)
