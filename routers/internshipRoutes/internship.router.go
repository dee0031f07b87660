package internshipRoutes

import (
	internshipController "internhub/controllers/internship"
	"internhub/middleware"
	"internhub/models"
	internshipValidator "internhub/validators/internship"

	"github.com/gofiber/fiber/v2"
)

// SetupInternshipRoutes registers every workflow route under /api.
func SetupInternshipRoutes(app *fiber.App, ctl *internshipController.Controller, bulkPerMinute int) {
	api := app.Group("/api", middleware.JWTMiddleware)

	// Student
	student := api.Group("/student/internships", middleware.RequireRoles(models.RoleStudent))
	student.Post("/", internshipValidator.Internship(), ctl.CreateInternship)
	student.Get("/", ctl.GetMyInternships)
	student.Get("/:id", ctl.GetInternship)
	student.Put("/:id", internshipValidator.Internship(), ctl.UpdateInternship)
	student.Post("/:id/submit", ctl.SubmitInternship)
	student.Delete("/:id", ctl.DeleteInternship)

	// Instructor (static paths before /:id)
	instructor := api.Group("/instructor/internships", middleware.RequireRoles(models.RoleInstructor))
	instructor.Get("/pending", ctl.GetPendingInternships)
	instructor.Get("/available", ctl.GetAvailableInternships)
	instructor.Get("/validated", ctl.GetValidatedInternships)
	instructor.Get("/:id", ctl.GetInternship)
	instructor.Post("/:id/claim", ctl.ClaimInternship)
	instructor.Post("/:id/validate", ctl.ValidateInternship)
	instructor.Post("/:id/refuse", internshipValidator.Refusal(), ctl.RefuseInternship)

	// Admin
	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/internships", ctl.GetAllInternships)
	admin.Get("/internships/:id", ctl.GetInternship)
	admin.Delete("/internships/:id", ctl.DeleteInternship)
	admin.Put("/internships/:id/reassign/:instructorId", ctl.ReassignInstructor)
	admin.Post("/sectors", internshipValidator.CreateSector(), ctl.CreateSector)
	admin.Get("/sectors", ctl.GetSectors)
	admin.Put("/instructors/:id/sectors", internshipValidator.AssignSectors(), ctl.AssignSectors)
	admin.Get("/activity-logs", internshipValidator.ActivityQuery(), ctl.GetActivityLogs)

	// Search and bulk
	api.Get("/internships/search",
		middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor),
		internshipValidator.Search(), ctl.Search)
	api.Post("/bulk/internships",
		middleware.RateLimit(bulkPerMinute, 5),
		internshipValidator.BulkOperation(), ctl.BulkOperation)
}
