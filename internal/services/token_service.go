package services

import (
	"errors"
	"fmt"
	"time"

	"notesaas/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "notesaas"

// TokenService issues and verifies HS256 access tokens.
type TokenService interface {
	Issue(userID, tenantID uuid.UUID) (string, error)
	Parse(token string) (*models.SessionClaims, error)
	TTL() time.Duration
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*tokenService)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) {
		s.now = now
	}
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) TokenService {
	s := &tokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) TTL() time.Duration {
	return s.ttl
}

func (s *tokenService) Issue(userID, tenantID uuid.UUID) (string, error) {
	now := s.now()
	claims := TokenClaims{
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// Parse verifies a token. Expiry is decided before the signature so that an
// expired token is always reported as expired.
func (s *tokenService) Parse(token string) (*models.SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	unverified := &TokenClaims{}
	tok, _, err := parser.ParseUnverified(token, unverified)
	if err != nil {
		return nil, &TokenError{Kind: TokenMalformed, Err: err}
	}
	if tok.Method == nil || tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, &TokenError{Kind: TokenMalformed, Err: fmt.Errorf("unexpected signing method %v", tok.Header["alg"])}
	}
	if unverified.ExpiresAt == nil {
		return nil, &TokenError{Kind: TokenMalformed, Err: errors.New("missing exp claim")}
	}
	if !s.now().Before(unverified.ExpiresAt.Time) {
		return nil, &TokenError{Kind: TokenExpired, Err: jwt.ErrTokenExpired}
	}

	claims := &TokenClaims{}
	_, err = parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, classifyJWTError(err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, &TokenError{Kind: TokenMalformed, Err: fmt.Errorf("user_id claim: %w", err)}
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, &TokenError{Kind: TokenMalformed, Err: fmt.Errorf("tenant_id claim: %w", err)}
	}

	session := &models.SessionClaims{
		UserID:    userID,
		TenantID:  tenantID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &TokenError{Kind: TokenBadSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenInvalidClaims):
		return &TokenError{Kind: TokenMalformed, Err: err}
	default:
		return &TokenError{Kind: TokenBadSignature, Err: err}
	}
}
