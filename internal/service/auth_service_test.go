package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/praneelbora/expensease/internal/auth"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	store := newTestStore(t)
	authenticator := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewTokenIssuer("test-secret-key-for-tests", time.Hour)
	return NewAuthService(authenticator, tokens, store, slog.Default())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "asha@example.com", "Asha", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.Token == "" {
		t.Error("expected non-empty token")
	}
	if registered.User.ID == "" {
		t.Error("expected non-empty user ID")
	}

	loggedIn, err := svc.Login(ctx, "asha@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("login user ID = %s, want %s", loggedIn.User.ID, registered.User.ID)
	}

	user, err := svc.CurrentUser(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Email != "asha@example.com" {
		t.Errorf("email = %s, want asha@example.com", user.Email)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "First", "password123"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "Second", "password456"); !errors.Is(err, auth.ErrEmailExists) {
		t.Errorf("error = %v, want ErrEmailExists", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register(context.Background(), "weak@example.com", "Weak", "short"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("error = %v, want ErrWeakPassword", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "asha@example.com", "Asha", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Login(ctx, "asha@example.com", "wrong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestPaymentMethods(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "pm@example.com", "Payer", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	userID := registered.User.ID

	if _, err := svc.AddPaymentMethod(ctx, userID, "Personal UPI", "upi"); err != nil {
		t.Fatalf("AddPaymentMethod failed: %v", err)
	}
	if _, err := svc.AddPaymentMethod(ctx, userID, "", "card"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput for empty label", err)
	}

	methods, err := svc.ListPaymentMethods(ctx, userID)
	if err != nil {
		t.Fatalf("ListPaymentMethods failed: %v", err)
	}
	if len(methods) != 1 {
		t.Errorf("expected 1 method, got %d", len(methods))
	}
}
