// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/praneelbora/expensease/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for expense storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id, ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// AddPaymentMethod saves a payment method for a user.
	AddPaymentMethod(ctx context.Context, method *models.PaymentMethod) error

	// ListPaymentMethods returns a user's payment methods, oldest first.
	ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error)

	// CreateGroup persists a new group with its members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members, ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddGroupMembers adds members to a group, ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	// CreateExpense persists an expense with its items and split rows.
	// The expense ID is generated when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with items and splits, ErrNotFound if
	// absent.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByUser returns expenses the user created or appears in,
	// newest first.
	ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error)

	// ListExpensesByGroup returns a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// CreateSettlement records a settlement payment.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByUser returns settlements involving the user, newest
	// first.
	ListSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error)

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
