// Package auth covers account identity for Expensease: password-based
// registration and login, and the session tokens handed to clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/praneelbora/expensease/internal/models"
)

// minPasswordLength is the floor enforced at registration.
const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// Authenticator abstracts the credential scheme behind registration and
// login so the service layer stays agnostic of how accounts prove identity.
type Authenticator interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	ValidateCredential(password string) error
}

// UserStore is the slice of storage the password authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator registers and verifies accounts against bcrypt
// hashes. Emails are normalized to lower case on the way in, so lookups and
// the uniqueness check are case insensitive.
type PasswordAuthenticator struct {
	store UserStore
	cost  int
}

// NewPasswordAuthenticator creates a password authenticator backed by store.
func NewPasswordAuthenticator(store UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store, cost: bcrypt.DefaultCost}
}

// ValidateCredential checks the password against the registration policy.
func (a *PasswordAuthenticator) ValidateCredential(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an account with a freshly hashed password. The plaintext
// never leaves this function.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := a.ValidateCredential(password); err != nil {
		return nil, err
	}

	if existing, err := a.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.NewUser(email, name, string(hash))
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies email and password, returning the account on
// success. Unknown email and wrong password both come back as
// ErrInvalidCredentials so callers cannot probe which one failed.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
