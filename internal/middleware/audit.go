package middleware

import (
	"net/http"
	"strings"

	"notesaas/internal/common"
	"notesaas/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuditMiddleware writes an audit log entry for every state-changing request
// of an authenticated principal.
type AuditMiddleware struct {
	log *logger.Logger
}

func NewAuditMiddleware(log *logger.Logger) *AuditMiddleware {
	return &AuditMiddleware{
		log: log.WithFields(zap.String("component", "audit")),
	}
}

// AuditRequest logs mutations after the handler ran, including failed ones.
func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if m.shouldSkipLogging(method, c.Path()) {
				return err
			}

			ctx := c.Request().Context()
			principal, ok := common.GetPrincipalFromContext(ctx)
			if !ok {
				// Skip auditing if no tenant context
				return err
			}

			fields := []zap.Field{
				zap.String("action", method+" "+c.Path()),
				zap.String("user_id", principal.User.ID.String()),
				zap.String("role", principal.User.Role.String()),
				zap.Int("status", c.Response().Status),
				zap.String("ip", c.RealIP()),
				zap.String("user_agent", c.Request().UserAgent()),
			}
			if id := c.Param("id"); id != "" {
				fields = append(fields, zap.String("record_id", id))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			m.log.InfoContext(ctx, "audit", fields...)

			return err
		}
	}
}

// shouldSkipLogging skips reads and service endpoints.
func (m *AuditMiddleware) shouldSkipLogging(method, path string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return path == "/" || strings.HasPrefix(path, "/health")
}
