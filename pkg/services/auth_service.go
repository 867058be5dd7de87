package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/apperrors"
	"github.com/tailingsiq/tailingsiq-engine/pkg/auth"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
)

// AuthService establishes caller identity: login mints a session token,
// CurrentUser resolves validated claims back to the stored user.
type AuthService interface {
	// Login verifies the credentials and returns the user with a signed
	// session token. Unknown email and wrong password both fail with
	// ErrInvalidCredentials; the error never reveals which.
	Login(ctx context.Context, email, password string) (*models.User, string, error)

	// CurrentUser re-reads the user referenced by validated claims.
	// Returns ErrNotFound if the user no longer exists.
	CurrentUser(ctx context.Context, claims *auth.Claims) (*models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenService, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login verifies credentials and mints a session token.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Debug("Login attempt for unknown email")
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.logger.Debug("Login attempt with wrong password", zap.String("user_id", user.ID.String()))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return user, token, nil
}

// CurrentUser resolves validated claims to the stored user row.
func (s *authService) CurrentUser(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)
