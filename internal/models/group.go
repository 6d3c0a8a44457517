package models

// Group represents a reusable participant list.
// Groups own expense history, enabling per-group balances and settlement
// suggestions.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Flatmates", "Goa Trip").
	Name string

	// Members is the list of member user IDs.
	Members []string

	// CreatedBy is the user ID that created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
