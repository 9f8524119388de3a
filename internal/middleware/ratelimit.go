package middleware

import (
	"context"
	"net/http"
	"time"

	"notesaas/internal/common"
	"notesaas/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RateLimiter counts requests per key inside a fixed window.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit allows requests per client IP per window. A limiter error lets
// the request through.
func RateLimit(limiter RateLimiter, requests int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			limited, err := limiter.IsRateLimited(ctx, "ip:"+c.RealIP(), requests, window)
			if err != nil {
				logger.WarnCtx(ctx, "rate limiter unavailable, allowing request", zap.Error(err))
				return next(c)
			}
			if limited {
				return common.SendError(c, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
			}
			return next(c)
		}
	}
}
