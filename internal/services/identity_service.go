package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// PrincipalCache stores resolved principals per token. Entries are scoped to a
// tenant generation; InvalidateTenantPrincipals moves the tenant to a new
// generation so every older entry is dropped.
type PrincipalCache interface {
	TenantGeneration(ctx context.Context, tenantID uuid.UUID) (int64, error)
	GetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string) (*models.Principal, error)
	SetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string, principal *models.Principal, ttl time.Duration) error
	InvalidateTenantPrincipals(ctx context.Context, tenantID uuid.UUID) error
}

// IdentityService turns a raw Authorization header into a Principal.
type IdentityService interface {
	Resolve(ctx context.Context, authHeader string) (*models.Principal, error)
}

type identityService struct {
	tokens   TokenService
	users    repositories.UserRepository
	cache    PrincipalCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewIdentityService builds the resolver. A nil cache or zero cacheTTL
// resolves every request against the user repository.
func NewIdentityService(tokens TokenService, users repositories.UserRepository, cache PrincipalCache, cacheTTL time.Duration) IdentityService {
	return &identityService{
		tokens:   tokens,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func (s *identityService) Resolve(ctx context.Context, authHeader string) (*models.Principal, error) {
	token, err := bearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	slot := s.cacheSlot(ctx, claims, token)
	if p := s.lookupCache(ctx, claims, slot); p != nil {
		return p, nil
	}

	uwt, err := s.users.FindByIDWithTenant(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrInternal, err)
	}
	if !uwt.User.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", ErrInvalidToken)
	}
	if uwt.User.TenantID != claims.TenantID || uwt.Tenant.ID != claims.TenantID {
		return nil, fmt.Errorf("%w: token tenant %s, user tenant %s", ErrTenantMismatch, claims.TenantID, uwt.User.TenantID)
	}

	principal := models.NewPrincipal(uwt)
	s.storeCache(ctx, claims, slot, principal)
	return principal, nil
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoCredential
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", fmt.Errorf("%w: authorization scheme is not Bearer", ErrNoCredential)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// cacheKeyForToken hashes the signature segment; the raw token never leaves the process.
func cacheKeyForToken(token string) string {
	sig := token
	if i := strings.LastIndexByte(token, '.'); i >= 0 {
		sig = token[i+1:]
	}
	sum := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(sum[:])
}

// cacheSlot pins the tenant generation before the user is loaded. Nil means
// the cache is off or unreachable for this request.
type cacheSlot struct {
	generation int64
	tokenKey   string
}

func (s *identityService) cacheSlot(ctx context.Context, claims *models.SessionClaims, token string) *cacheSlot {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	gen, err := s.cache.TenantGeneration(ctx, claims.TenantID)
	if err != nil {
		logger.WarnCtx(ctx, "principal cache read failed", zap.Error(err))
		return nil
	}
	return &cacheSlot{generation: gen, tokenKey: cacheKeyForToken(token)}
}

func (s *identityService) lookupCache(ctx context.Context, claims *models.SessionClaims, slot *cacheSlot) *models.Principal {
	if slot == nil {
		return nil
	}
	p, err := s.cache.GetPrincipal(ctx, claims.TenantID, slot.generation, slot.tokenKey)
	if err != nil {
		logger.WarnCtx(ctx, "principal cache read failed", zap.Error(err))
		return nil
	}
	if p == nil || p.User.ID != claims.UserID || p.Tenant.ID != claims.TenantID {
		return nil
	}
	return p
}

func (s *identityService) storeCache(ctx context.Context, claims *models.SessionClaims, slot *cacheSlot, p *models.Principal) {
	if slot == nil {
		return
	}
	ttl := s.cacheTTL
	if remaining := claims.ExpiresAt.Sub(s.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.SetPrincipal(ctx, claims.TenantID, slot.generation, slot.tokenKey, p, ttl); err != nil {
		logger.WarnCtx(ctx, "principal cache write failed", zap.Error(err))
	}
}
