package handlers

import (
	"notesaas/internal/middleware"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

// Routes bundles what RegisterRoutes wires. Audit may be nil.
type Routes struct {
	Auth    *AuthHandlers
	Tenants *TenantHandlers
	Notes   *NoteHandlers
	Users   *UserHandlers
	Health  *HealthHandlers

	Identity services.IdentityService
	RBAC     *middleware.RBACMiddleware
	Quota    services.QuotaService
	Audit    *middleware.AuditMiddleware
}

// RegisterRoutes mounts every endpoint on e. Protected groups run
// Authenticate, then the role gate, then the quota gate where it applies.
func RegisterRoutes(e *echo.Echo, r *Routes) {
	// Health endpoints (no auth required)
	e.GET("/", r.Health.Root)
	e.GET("/health", r.Health.HealthCheck)
	e.GET("/health/ready", r.Health.ReadinessCheck)

	authn := middleware.Authenticate(r.Identity)
	protected := []echo.MiddlewareFunc{authn}
	if r.Audit != nil {
		protected = append(protected, r.Audit.AuditRequest())
	}

	auth := e.Group("/auth")
	auth.POST("/login", r.Auth.Login)
	auth.POST("/logout", r.Auth.Logout)
	auth.GET("/me", r.Auth.Me, authn)

	tenants := e.Group("/tenants", protected...)
	tenants.GET("/info", r.Tenants.Info, r.RBAC.RequireAction(services.ActionViewTenant))
	tenants.GET("/stats", r.Tenants.Stats, r.RBAC.RequireAction(services.ActionTenantStats))
	tenants.POST("/:slug/upgrade", r.Tenants.Upgrade, r.RBAC.RequireAction(services.ActionUpgradeTenant))
	tenants.POST("/:slug/export", r.Tenants.Export, r.RBAC.RequireAction(services.ActionExportNotes))

	read := r.RBAC.RequireAction(services.ActionReadNotes)
	write := r.RBAC.RequireAction(services.ActionWriteNotes)

	notes := e.Group("/notes", protected...)
	notes.GET("", r.Notes.List, read)
	notes.POST("", r.Notes.Create, write, middleware.CheckNoteLimit(r.Quota))
	notes.GET("/:id", r.Notes.Get, read)
	notes.PUT("/:id", r.Notes.Update, write)
	notes.DELETE("/:id", r.Notes.Delete, write)
	notes.PATCH("/:id/archive", r.Notes.ToggleArchive, write)

	users := e.Group("/users", append(protected, r.RBAC.RequireAction(services.ActionManageUsers))...)
	users.GET("", r.Users.List)
	users.PATCH("/:id/status", r.Users.SetStatus)
}
