package services

import (
	"fmt"

	"notesaas/internal/models"
)

// Action names an operation that is gated by role.
type Action string

const (
	ActionReadNotes     Action = "notes:read"
	ActionWriteNotes    Action = "notes:write"
	ActionViewTenant    Action = "tenant:view"
	ActionUpgradeTenant Action = "tenant:upgrade"
	ActionTenantStats   Action = "tenant:stats"
	ActionExportNotes   Action = "tenant:export"
	ActionManageUsers   Action = "users:manage"
)

// RBACService answers whether a principal may perform an action.
type RBACService interface {
	AllowedRoles(action Action) (models.RoleSet, error)
	Can(principal *models.Principal, action Action) bool
}

type rbacService struct{}

func NewRBACService() RBACService {
	return &rbacService{}
}

// AllowedRoles returns the explicit allow-list for action. Every role is
// listed where it is allowed; admin does not inherit member permissions.
func (s *rbacService) AllowedRoles(action Action) (models.RoleSet, error) {
	switch action {
	case ActionReadNotes, ActionWriteNotes, ActionViewTenant:
		return models.NewRoleSet(models.RoleAdmin, models.RoleMember), nil
	case ActionUpgradeTenant, ActionTenantStats, ActionExportNotes, ActionManageUsers:
		return models.NewRoleSet(models.RoleAdmin), nil
	}
	return nil, fmt.Errorf("unknown action %q", action)
}

func (s *rbacService) Can(principal *models.Principal, action Action) bool {
	allowed, err := s.AllowedRoles(action)
	if err != nil {
		return false
	}
	return Authorize(principal, allowed)
}

// Authorize reports whether the principal's role is in allowed. It has no
// side effects. Callers reject a nil principal as unauthenticated first.
func Authorize(principal *models.Principal, allowed models.RoleSet) bool {
	if principal == nil {
		return false
	}
	switch principal.User.Role {
	case models.RoleAdmin, models.RoleMember:
		return allowed.Contains(principal.User.Role)
	}
	return false
}
