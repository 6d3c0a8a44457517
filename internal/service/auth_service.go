package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/praneelbora/expensease/internal/auth"
	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/storage"
)

// AuthService handles registration, login and profile operations.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.TokenIssuer
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.TokenIssuer, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
		store:         store,
		logger:        logger,
	}
}

// AuthResult is a signed-in user with their session token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user account and returns a session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	s.logger.Info("Register request", "email", email)

	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name required", ErrInvalidInput)
	}

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		s.logger.Error("Registration failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return &AuthResult{User: user, Token: token}, nil
}

// CurrentUser returns the authenticated user's full profile.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("CurrentUser lookup failed", "user_id", userID, "error", err)
		return nil, err
	}
	return user, nil
}

// AddPaymentMethod saves a payment method on the user's profile.
func (s *AuthService) AddPaymentMethod(ctx context.Context, userID, label, kind string) (*models.PaymentMethod, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if label == "" {
		return nil, fmt.Errorf("%w: label required", ErrInvalidInput)
	}

	method := &models.PaymentMethod{UserID: userID, Label: label, Kind: kind}
	if err := s.store.AddPaymentMethod(ctx, method); err != nil {
		s.logger.Error("AddPaymentMethod failed", "user_id", userID, "error", err)
		return nil, err
	}
	return method, nil
}

// ListPaymentMethods returns the user's payment methods, oldest first.
func (s *AuthService) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	return s.store.ListPaymentMethods(ctx, userID)
}
