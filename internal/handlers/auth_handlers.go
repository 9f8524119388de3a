package handlers

import (
	"net/http"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type meResponse struct {
	User models.UserResponse `json:"user"`
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendError(c, http.StatusBadRequest, "Email and password are required.")
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, models.LoginResponse{
		Message:   "Login successful",
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt,
		User:      models.NewUserResponse(result.Principal),
	})
}

// Me returns the authenticated principal
func (h *AuthHandlers) Me(c echo.Context) error {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}
	return c.JSON(http.StatusOK, meResponse{User: models.NewUserResponse(principal)})
}

// Logout is stateless; the client discards its token.
func (h *AuthHandlers) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Logout successful"})
}
