package services

import (
	"context"
	"errors"
	"net/mail"

	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	Provision(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error)
	SetActive(ctx context.Context, principal *models.Principal, userID uuid.UUID, active bool) (*models.User, error)
}

type CreateUserRequest struct {
	TenantID uuid.UUID
	Email    string
	Password string
	Role     models.Role
}

type userService struct {
	userRepo   repositories.UserRepository
	cache      PrincipalCache
	bcryptCost int
}

// NewUserService builds the user service. cache may be nil.
func NewUserService(userRepo repositories.UserRepository, cache PrincipalCache, bcryptCost int) UserService {
	return &userService{userRepo: userRepo, cache: cache, bcryptCost: bcryptCost}
}

func (s *userService) Provision(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	email := NormalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newValidationError("email", "is not a valid address")
	}
	if len(req.Password) < 6 {
		return nil, newValidationError("password", "must be at least 6 characters")
	}
	if !req.Role.IsValid() {
		return nil, newValidationError("role", "must be admin or member")
	}
	if req.TenantID == uuid.Nil {
		return nil, newValidationError("tenant_id", "is required")
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newValidationError("email", "already registered")
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	return s.userRepo.ListByTenant(ctx, tenantID)
}

// SetActive toggles a user of the principal's tenant. Deactivation takes
// effect on that user's next request.
func (s *userService) SetActive(ctx context.Context, principal *models.Principal, userID uuid.UUID, active bool) (*models.User, error) {
	if principal.User.ID == userID && !active {
		return nil, newValidationError("user_id", "cannot deactivate yourself")
	}
	user, err := s.userRepo.SetActive(ctx, principal.Tenant.ID, userID, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	// cached principals carry the old status until dropped
	if s.cache != nil {
		if err := s.cache.InvalidateTenantPrincipals(ctx, principal.Tenant.ID); err != nil {
			logger.WarnCtx(ctx, "failed to invalidate cached principals after status change",
				zap.String("tenant_id", principal.Tenant.ID.String()),
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	logger.InfoCtx(ctx, "user status changed",
		zap.String("user_id", userID.String()),
		zap.Bool("is_active", active),
		zap.String("by_user", principal.User.ID.String()))

	return user, nil
}
