package middleware

import (
	"errors"

	"notesaas/internal/common"
	"notesaas/internal/logger"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Authenticate resolves the Authorization header to a principal and stores
// it in the request context. Every failure gets the same 401 body.
func Authenticate(identity services.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			principal, err := identity.Resolve(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				fields := []zap.Field{
					zap.String("reason", authFailureReason(err)),
					zap.String("path", c.Path()),
					zap.String("ip", c.RealIP()),
				}
				if errors.Is(err, services.ErrTenantMismatch) {
					logger.WarnCtx(ctx, "token tenant does not match user tenant", append(fields, zap.Error(err))...)
				} else if services.IsAuthenticationError(err) {
					logger.Get().WithContext(ctx).Debug("authentication failed", fields...)
				}
				return common.RespondError(c, err)
			}

			c.SetRequest(c.Request().WithContext(common.WithPrincipal(ctx, principal)))
			return next(c)
		}
	}
}

// authFailureReason names the failure kind for logs only.
func authFailureReason(err error) string {
	switch {
	case errors.Is(err, services.ErrNoCredential):
		return "no_credential"
	case errors.Is(err, services.ErrTokenExpired):
		return "expired"
	case errors.Is(err, services.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, services.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, services.ErrTenantMismatch):
		return "tenant_mismatch"
	case errors.Is(err, services.ErrInvalidToken):
		return "unknown_or_inactive_user"
	}
	return "internal"
}
