package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique). Used for login.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a User with a fresh ID and creation timestamp.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// PaymentMethod is a payment account saved by a user (UPI handle, card, bank
// account). Payers with more than one method on file must pick one when an
// expense is finalized.
type PaymentMethod struct {
	// ID is the unique identifier for the payment method (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// Label is the display label (e.g. "Personal UPI", "HDFC Credit Card").
	Label string

	// Kind is the method type: "upi", "card", "bank" or "cash".
	Kind string

	// CreatedAt is the Unix timestamp when the method was added.
	CreatedAt int64
}
