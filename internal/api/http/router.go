package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tillwork/posadmin/internal/api/http/handlers"
	"github.com/tillwork/posadmin/internal/auth"
	"github.com/tillwork/posadmin/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Pages          *handlers.PagesHandler
	Staff          *handlers.StaffHandler
	Branches       *handlers.BranchesHandler
	Activity       *handlers.ActivityHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)
	app.Get("/metrics/prometheus", cfg.Health.Prometheus)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/login/pin", cfg.Auth.LoginPIN)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	session.Post("/refresh", cfg.Auth.Refresh)
	session.Post("/logout", cfg.Auth.Logout)
	session.Get("/profile", cfg.Auth.Profile)

	pages := app.Group("/pages", cfg.AuthMiddleware.Handle, auth.RequireRole())
	pages.Get("", cfg.Pages.Resources)
	pages.Get("/:resource", cfg.Pages.Get)
	pages.Post("/:resource/load", cfg.Pages.Load)
	pages.Put("/:resource/filters", cfg.Pages.SetFilters)
	pages.Delete("/:resource/filters", cfg.Pages.ClearFilters)
	pages.Post("/:resource/select", cfg.Pages.Select)
	pages.Post("/:resource/select-all", cfg.Pages.SelectAll)
	pages.Post("/:resource/modal/create", cfg.Pages.OpenCreate)
	pages.Post("/:resource/modal/edit/:id", cfg.Pages.OpenEdit)
	pages.Delete("/:resource/modal", cfg.Pages.CloseModal)
	pages.Put("/:resource/form", cfg.Pages.SetForm)
	pages.Post("/:resource/submit", cfg.Pages.Submit)
	pages.Delete("/:resource/items/:id", cfg.Pages.Delete)
	pages.Post("/:resource/delete-selected", cfg.Pages.DeleteSelected)
	pages.Get("/:resource/export.csv", cfg.Pages.ExportCSV)
	pages.Get("/:resource/export.xlsx", cfg.Pages.ExportXLSX)
	pages.Post("/:resource/import", cfg.Pages.Import)
	pages.Delete("/:resource/toast", cfg.Pages.DismissToast)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.StaffRoleAdmin, domain.StaffRoleManager))
	staff.Post("", cfg.Staff.Create)
	staff.Post("/:id/pin", cfg.Staff.UpdatePIN)
	staff.Post("/:id/toggle-status", cfg.Staff.ToggleStatus)

	app.Get("/branches/resolve/:code", cfg.AuthMiddleware.Handle, cfg.Branches.Resolve)
	app.Get("/activity", cfg.AuthMiddleware.Handle, cfg.Activity.Recent)
}
