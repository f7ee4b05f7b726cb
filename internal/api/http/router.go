package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicpulse/grievance-service/internal/api/http/handlers"
	"github.com/civicpulse/grievance-service/internal/auth"
	"github.com/civicpulse/grievance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Grievances      *handlers.GrievancesHandler
	OfficerWorkload *handlers.OfficerGrievancesHandler
	Admin           *handlers.AdminGrievancesHandler
	Staff           *handlers.StaffHandler
	Metadata        *handlers.MetadataHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/citizens/register", cfg.Users.Register)
	authGroup.Post("/citizens/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Users.StaffLogin)

	metadata := app.Group("/metadata")
	metadata.Get("/departments", cfg.Metadata.Departments)
	metadata.Get("/regions", cfg.Metadata.Regions)

	citizen := app.Group("/grievances", cfg.AuthMiddleware.Handle, auth.RequireCitizen())
	citizen.Post("", cfg.Grievances.Create)
	citizen.Get("", cfg.Grievances.ListMine)
	citizen.Get("/:id", cfg.Grievances.Get)
	citizen.Post("/:id/feedback", cfg.Grievances.AttachFeedback)

	staff := app.Group("/staff/grievances", cfg.AuthMiddleware.Handle,
		auth.RequireStaffRole(domain.StaffRoleFieldOfficer, domain.StaffRoleAdmin))
	staff.Get("", cfg.OfficerWorkload.ListAssigned)
	staff.Get("/:id", cfg.OfficerWorkload.Get)
	staff.Post("/:id/start", cfg.OfficerWorkload.StartWork)
	staff.Post("/:id/resolution", cfg.OfficerWorkload.SubmitResolution)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Get("/grievances", cfg.Admin.List)
	admin.Get("/grievances/:id", cfg.Admin.Get)
	admin.Post("/grievances/:id/transition", cfg.Admin.Transition)
	admin.Post("/grievances/:id/board-move", cfg.Admin.BoardMove)
	admin.Get("/grievances/:id/eligible-officers", cfg.Admin.EligibleOfficers)
	admin.Get("/stats/geo", cfg.Admin.GeoCounts)
	admin.Get("/stats/dashboard", cfg.Admin.Dashboard)
	admin.Post("/officers", cfg.Staff.Create)
	admin.Get("/officers", cfg.Staff.List)
	admin.Get("/officers/:id", cfg.Staff.Get)
	admin.Patch("/officers/:id/active", cfg.Staff.SetActive)
}
