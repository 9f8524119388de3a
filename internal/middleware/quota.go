package middleware

import (
	"net/http"

	"notesaas/internal/common"
	"notesaas/internal/logger"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CheckNoteLimit rejects a note creation when the principal's tenant is at
// its quota. It must run after Authenticate.
func CheckNoteLimit(quota services.QuotaService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			principal, ok := common.GetPrincipalFromContext(ctx)
			if !ok {
				return common.SendError(c, http.StatusUnauthorized, "Authentication required.")
			}

			decision, err := quota.Check(ctx, principal.Tenant)
			if err != nil {
				return common.RespondError(c, err)
			}
			if err := decision.Err(); err != nil {
				logger.InfoCtx(ctx, "note creation denied by quota",
					zap.Int("current_count", decision.CurrentCount),
					zap.Int("limit", decision.Limit))
				return common.RespondError(c, err)
			}

			return next(c)
		}
	}
}
