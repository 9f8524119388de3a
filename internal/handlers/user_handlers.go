package handlers

import (
	"net/http"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user management within the caller's tenant (admin only)
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

type userStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

type usersResponse struct {
	Users []*models.User `json:"users"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func (h *UserHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}

	users, err := h.userService.ListByTenant(ctx, principal.Tenant.ID)
	if err != nil {
		return common.RespondError(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

// SetStatus activates or deactivates a user of the caller's tenant.
func (h *UserHandlers) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req userStatusRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return common.SendValidationError(c, "is_active", "is required")
	}

	user, err := h.userService.SetActive(ctx, principal, id, *req.IsActive)
	if err != nil {
		return common.RespondError(c, err)
	}

	msg := "User deactivated successfully"
	if user.IsActive {
		msg = "User activated successfully"
	}
	return c.JSON(http.StatusOK, userResponse{Message: msg, User: user})
}
