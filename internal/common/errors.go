package common

import (
	"errors"
	"net/http"

	"notesaas/internal/logger"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	MsgInvalidToken       = "Invalid token."
	MsgForbidden          = "Insufficient permissions."
	MsgInvalidCredentials = "Invalid credentials."
	MsgWrongTenant        = "Access denied. Invalid tenant."
	MsgAlreadyPro         = "Tenant is already on Pro plan."
	MsgNoteLimit          = "Note limit reached. Please upgrade to Pro plan."
	MsgRouteNotFound      = "Route not found"
	MsgInternal           = "Something went wrong!"
)

// QuotaExceededResponse is the body of a denied note creation.
type QuotaExceededResponse struct {
	Error        string `json:"error"`
	CurrentCount int    `json:"current_count"`
	Limit        int    `json:"limit"`
	Subscription string `json:"subscription"`
}

// SendError writes a plain error body.
func SendError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Error: message})
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Details: map[string]string{field: message},
	})
}

// RespondError maps a service error to its HTTP status and body. Every
// authentication failure gets the same body; the cause only reaches the log.
func RespondError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var vErr *services.ValidationError
	var quotaErr *services.QuotaExceededError

	switch {
	case services.IsAuthenticationError(err):
		return SendError(c, http.StatusUnauthorized, MsgInvalidToken)
	case errors.Is(err, services.ErrInvalidCredentials):
		return SendError(c, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, services.ErrForbidden):
		return SendError(c, http.StatusForbidden, MsgForbidden)
	case errors.Is(err, services.ErrWrongTenant):
		return SendError(c, http.StatusForbidden, MsgWrongTenant)
	case errors.Is(err, services.ErrAlreadyPro):
		return SendError(c, http.StatusBadRequest, MsgAlreadyPro)
	case errors.As(err, &quotaErr):
		return c.JSON(http.StatusForbidden, QuotaExceededResponse{
			Error:        MsgNoteLimit,
			CurrentCount: quotaErr.CurrentCount,
			Limit:        quotaErr.Limit,
			Subscription: string(quotaErr.Subscription),
		})
	case errors.As(err, &vErr):
		return SendValidationError(c, vErr.Field, vErr.Message)
	case errors.Is(err, services.ErrNoteNotFound):
		return SendError(c, http.StatusNotFound, "Note not found.")
	case errors.Is(err, services.ErrUserNotFound):
		return SendError(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, services.ErrTenantNotFound):
		return SendError(c, http.StatusNotFound, "Tenant not found.")
	case errors.Is(err, services.ErrExportUnavailable):
		return SendError(c, http.StatusServiceUnavailable, "Note export is not available.")
	}

	logger.ErrorCtx(ctx, "request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return SendError(c, http.StatusInternalServerError, MsgInternal)
}

// HTTPErrorHandler replaces echo's default handler so framework errors use
// the same body shape as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		switch {
		case he.Code == http.StatusNotFound:
			message = MsgRouteNotFound
		case he.Message != nil:
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = SendError(c, he.Code, message)
		}
	} else {
		err = RespondError(c, err)
	}

	if err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}
