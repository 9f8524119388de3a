package middleware

import (
	"net/http"

	"notesaas/internal/common"
	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RBACMiddleware struct {
	rbacService services.RBACService
}

func NewRBACMiddleware(rbacService services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{
		rbacService: rbacService,
	}
}

// RequireAction admits principals whose role may perform action.
func (m *RBACMiddleware) RequireAction(action services.Action) echo.MiddlewareFunc {
	allowed, err := m.rbacService.AllowedRoles(action)
	if err != nil {
		// routes are wired at startup, an unknown action is a programming error
		panic(err)
	}
	return RequireRoles(allowed...)
}

// RequireRoles admits principals holding one of roles. It must run after Authenticate.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	allowed := models.NewRoleSet(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			principal, ok := common.GetPrincipalFromContext(ctx)
			if !ok {
				return common.SendError(c, http.StatusUnauthorized, "Authentication required.")
			}

			if !services.Authorize(principal, allowed) {
				logger.Get().WithContext(ctx).Debug("role denied",
					zap.String("role", principal.User.Role.String()),
					zap.Strings("allowed", allowed.Strings()),
					zap.String("path", c.Path()))
				return common.RespondError(c, services.ErrForbidden)
			}

			return next(c)
		}
	}
}
