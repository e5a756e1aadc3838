package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-info-service/internal/api/http/handlers"
	"github.com/spec-kit/health-info-service/internal/auth"
	"github.com/spec-kit/health-info-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Programs       *handlers.ProgramHandler
	Clients        *handlers.ClientHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Each protected route declares the
// role it requires; the guard does the rest.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Home)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register-admin", cfg.Auth.RegisterAdmin)
	app.Post("/login", cfg.Auth.Login)

	// public client lookup, no auth upstream either
	app.Get("/clients/:id", cfg.Clients.GetByID)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/register-doctor", auth.RequireRole(domain.RoleAdmin), cfg.Auth.RegisterDoctor)

	protected.Post("/programs", auth.RequireRole(domain.RoleDoctor), cfg.Programs.Create)
	protected.Get("/programs", auth.RequireRole(domain.RoleDoctor), cfg.Programs.List)

	protected.Post("/clients", auth.RequireRole(domain.RoleDoctor), cfg.Clients.Create)
	protected.Get("/clients", auth.RequireRole(domain.RoleDoctor), cfg.Clients.List)
	protected.Patch("/clients/:id", auth.RequireRole(domain.RoleDoctor), cfg.Clients.Update)

	protected.Post("/enroll-client", auth.RequireRole(domain.RoleDoctor), cfg.Clients.Enroll)
	protected.Patch("/enrollments/:id", auth.RequireRole(domain.RoleDoctor), cfg.Clients.UpdateEnrollmentStatus)
}
