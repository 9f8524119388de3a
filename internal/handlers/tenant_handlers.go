package handlers

import (
	"net/http"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
	exportService services.ExportService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService, exportService services.ExportService) *TenantHandlers {
	return &TenantHandlers{
		tenantService: tenantService,
		exportService: exportService,
	}
}

type tenantResponse struct {
	Message string         `json:"message,omitempty"`
	Tenant  *models.Tenant `json:"tenant"`
}

type statsResponse struct {
	Stats *services.TenantStats `json:"stats"`
}

type exportResponse struct {
	Message string                  `json:"message"`
	Export  *services.ExportResult `json:"export"`
}

// Info returns the caller's tenant
func (h *TenantHandlers) Info(c echo.Context) error {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}
	return c.JSON(http.StatusOK, tenantResponse{Tenant: &principal.Tenant})
}

// Upgrade moves the caller's tenant to the pro plan (admin only)
func (h *TenantHandlers) Upgrade(c echo.Context) error {
	ctx := c.Request().Context()
	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}

	tenant, err := h.tenantService.Upgrade(ctx, principal, c.Param("slug"))
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, tenantResponse{
		Message: "Tenant upgraded to Pro plan successfully",
		Tenant:  tenant,
	})
}

// Stats returns usage figures of the caller's tenant (admin only)
func (h *TenantHandlers) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}

	stats, err := h.tenantService.Stats(ctx, principal.Tenant)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, statsResponse{Stats: stats})
}

// Export writes the tenant's active notes to object storage (admin only)
func (h *TenantHandlers) Export(c echo.Context) error {
	ctx := c.Request().Context()
	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return common.RespondError(c, services.ErrNoCredential)
	}

	result, err := h.exportService.ExportNotes(ctx, principal, c.Param("slug"))
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, exportResponse{
		Message: "Notes exported successfully",
		Export:  result,
	})
}
