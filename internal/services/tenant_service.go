package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type TenantService interface {
	Provision(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	Upgrade(ctx context.Context, principal *models.Principal, slug string) (*models.Tenant, error)
	Stats(ctx context.Context, tenant models.Tenant) (*TenantStats, error)
}

type tenantService struct {
	tenantRepo    repositories.TenantRepository
	userRepo      repositories.UserRepository
	noteRepo      repositories.NoteRepository
	cache         PrincipalCache
	freeNoteLimit int
}

func NewTenantService(tenantRepo repositories.TenantRepository, userRepo repositories.UserRepository,
	noteRepo repositories.NoteRepository, cache PrincipalCache, freeNoteLimit int) TenantService {
	return &tenantService{
		tenantRepo:    tenantRepo,
		userRepo:      userRepo,
		noteRepo:      noteRepo,
		cache:         cache,
		freeNoteLimit: freeNoteLimit,
	}
}

type CreateTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TenantStats struct {
	Tenant             models.Tenant `json:"tenant"`
	ActiveNotes        int           `json:"active_notes"`
	ArchivedNotes      int           `json:"archived_notes"`
	ActiveUsers        int           `json:"active_users"`
	CanCreateMoreNotes bool          `json:"can_create_more_notes"`
}

// NormalizeSlug lowercases and trims a tenant slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (s *tenantService) Provision(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	slug := NormalizeSlug(req.Slug)
	if name == "" || slug == "" {
		return nil, newValidationError("tenant", "name and slug are required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, newValidationError("slug", "must contain only lowercase letters, digits and single hyphens")
	}

	// new tenants always start on the free plan
	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         name,
		Slug:         slug,
		Subscription: models.SubscriptionFree,
		NoteLimit:    s.freeNoteLimit,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newValidationError("slug", "already taken")
		}
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

func (s *tenantService) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if slug == "" {
		return nil, newValidationError("slug", "is required")
	}
	tenant, err := s.tenantRepo.GetBySlug(ctx, NormalizeSlug(slug))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

// Upgrade moves the principal's own tenant to the pro plan. The caller must
// have passed the admin gate already. There is no way back to free.
func (s *tenantService) Upgrade(ctx context.Context, principal *models.Principal, slug string) (*models.Tenant, error) {
	if principal == nil {
		return nil, ErrNoCredential
	}
	if principal.Tenant.Slug != NormalizeSlug(slug) {
		return nil, ErrWrongTenant
	}
	if principal.Tenant.IsPro() {
		return nil, ErrAlreadyPro
	}

	upgraded, err := s.tenantRepo.UpgradeToPro(ctx, principal.Tenant.ID)
	if err != nil {
		// the conditional update found no free tenant: a concurrent upgrade won
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAlreadyPro
		}
		return nil, fmt.Errorf("%w: upgrade tenant: %w", ErrInternal, err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTenantPrincipals(ctx, upgraded.ID); err != nil {
			logger.WarnCtx(ctx, "failed to invalidate cached principals after upgrade",
				zap.String("tenant_id", upgraded.ID.String()), zap.Error(err))
		}
	}

	logger.InfoCtx(ctx, "tenant upgraded to pro",
		zap.String("tenant_id", upgraded.ID.String()),
		zap.String("slug", upgraded.Slug),
		zap.String("by_user", principal.User.ID.String()))

	return upgraded, nil
}

func (s *tenantService) Stats(ctx context.Context, tenant models.Tenant) (*TenantStats, error) {
	active, err := s.noteRepo.CountActive(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: count active notes: %w", ErrInternal, err)
	}
	archived, err := s.noteRepo.Count(ctx, tenant.ID, true)
	if err != nil {
		return nil, fmt.Errorf("%w: count archived notes: %w", ErrInternal, err)
	}
	users, err := s.userRepo.CountActiveByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: count users: %w", ErrInternal, err)
	}

	return &TenantStats{
		Tenant:             tenant,
		ActiveNotes:        active,
		ArchivedNotes:      archived,
		ActiveUsers:        users,
		CanCreateMoreNotes: CanCreate(tenant, active),
	}, nil
}
