package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nysenate/audit-utils/internal/api/http/handlers"
	"github.com/nysenate/audit-utils/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Reports        *handlers.ReportsHandler
	Employees      *handlers.EmployeesHandler
	Settings       *handlers.SettingsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	reports := api.Group("/reports")
	reports.Get("/daily", cfg.Reports.Daily)
	reports.Get("/weekly", cfg.Reports.Weekly)
	reports.Get("/monthly", cfg.Reports.Monthly)

	employees := api.Group("/employees")
	employees.Get("/search", cfg.Employees.Search)
	employees.Get("/field_mappings", cfg.Employees.FieldMappings)
	employees.Get("/:id", cfg.Employees.Get)

	settings := api.Group("/settings")
	settings.Get("/field_status", cfg.Settings.FieldStatus)
	settings.Get("/request_codes", cfg.Settings.RequestCodes)
	settings.Get("/transaction_codes", cfg.Settings.TransactionCodes)

	api.Get("/metrics", cfg.Metrics.Snapshot)
}
