package services

import (
	"errors"
	"fmt"

	"notesaas/internal/models"
)

// Authentication failures. Handlers collapse all three into one response.
var (
	ErrNoCredential   = errors.New("no credential provided")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTenantMismatch = errors.New("token tenant does not match user tenant")
)

var (
	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongTenant        = errors.New("access denied: invalid tenant")
	ErrAlreadyPro         = errors.New("tenant is already on pro plan")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrInternal           = errors.New("internal error")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsAuthenticationError reports whether err means the caller could not be identified.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrNoCredential) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTenantMismatch)
}

type TokenErrorKind string

const (
	TokenMalformed    TokenErrorKind = "malformed"
	TokenBadSignature TokenErrorKind = "bad_signature"
	TokenExpired      TokenErrorKind = "expired"
)

// TokenError is returned by the token codec. errors.Is matches on Kind, so
// errors.Is(err, ErrTokenExpired) holds for any expired token.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

var (
	ErrTokenMalformed    = &TokenError{Kind: TokenMalformed}
	ErrTokenBadSignature = &TokenError{Kind: TokenBadSignature}
	ErrTokenExpired      = &TokenError{Kind: TokenExpired}
)

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Kind)
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	return ok && t.Kind == e.Kind
}

// QuotaExceededError carries the data a client needs to explain a denied creation.
type QuotaExceededError struct {
	CurrentCount int
	Limit        int
	Subscription models.Subscription
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("note limit reached: %d of %d on %s plan", e.CurrentCount, e.Limit, e.Subscription)
}
