package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notesaas/internal/models"
	"notesaas/internal/repositories"
)

// AuthService exchanges credentials for an access token.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal *models.Principal
}

type authService struct {
	users  repositories.UserRepository
	tokens TokenService
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, tokens TokenService) AuthService {
	return &authService{users: users, tokens: tokens, now: time.Now}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login never says which check failed: unknown email, inactive user and wrong
// password all return ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, newValidationError("credentials", "email and password are required")
	}

	uwt, err := s.users.FindByEmailWithTenant(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			burnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrInternal, err)
	}

	if !VerifyPassword(password, uwt.User.PasswordHash) || !uwt.User.IsActive {
		return nil, ErrInvalidCredentials
	}

	issuedAt := s.now()
	token, err := s.tokens.Issue(uwt.User.ID, uwt.Tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.tokens.TTL()).Truncate(time.Second),
		Principal: models.NewPrincipal(uwt),
	}, nil
}
