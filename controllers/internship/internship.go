package internshipController

import (
	"fmt"
	"internhub/middleware"
	"internhub/models"
	"internhub/services"
	"internhub/utils"
	internshipValidator "internhub/validators/internship"

	"github.com/gofiber/fiber/v2"
)

// Controller exposes the internship workflow over HTTP.
type Controller struct {
	internships *services.InternshipService
	sectors     *services.SectorService
	activity    *services.ActivityService
}

func New(internships *services.InternshipService, sectors *services.SectorService, activity *services.ActivityService) *Controller {
	return &Controller{internships: internships, sectors: sectors, activity: activity}
}

// actor resolves the caller set by JWTMiddleware.
func (ctl *Controller) actor(c *fiber.Ctx) (services.Actor, error) {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return services.Actor{}, fmt.Errorf("%w: User ID not found", models.ErrUnauthorized)
	}
	return ctl.internships.ResolveActor(c.UserContext(), userId)
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	return utils.ParseID(c.Params(name))
}

func invalidID(c *fiber.Ctx, name string) error {
	return middleware.ValidationErrorResponse(c, map[string]string{name: name + " must be a positive number!"})
}

// CreateInternship creates a draft for the calling student.
func (ctl *Controller) CreateInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	details, ok := c.Locals("validatedInternship").(models.InternshipDetails)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	in, err := ctl.internships.CreateDraft(c.UserContext(), actor, details)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Internship created!", in)
}

// UpdateInternship edits a DRAFT or REFUSED internship of the calling student.
func (ctl *Controller) UpdateInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	details, ok := c.Locals("validatedInternship").(models.InternshipDetails)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	in, err := ctl.internships.Update(c.UserContext(), actor, id, details)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship updated!", in)
}

func (ctl *Controller) SubmitInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	in, err := ctl.internships.Submit(c.UserContext(), actor, id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship submitted for validation!", in)
}

// GetMyInternships lists the calling student's internships.
func (ctl *Controller) GetMyInternships(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	list, err := ctl.internships.ListForStudent(c.UserContext(), actor)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internships fetched!", list)
}

// GetInternship returns one internship the caller may see.
func (ctl *Controller) GetInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	in, err := ctl.internships.GetByID(c.UserContext(), actor, id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship fetched!", in)
}

func (ctl *Controller) DeleteInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if err := ctl.internships.Delete(c.UserContext(), actor, id); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship deleted!", nil)
}

// Search runs the validated query; paged=false returns every match.
func (ctl *Controller) Search(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	q, ok := c.Locals("validatedSearch").(internshipValidator.SearchQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !q.Paged {
		list, err := ctl.internships.Search(c.UserContext(), actor, q.Criteria)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Internships fetched!", list)
	}
	page, err := ctl.internships.SearchPage(c.UserContext(), actor, q.Criteria, q.Page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internships fetched!", page)
}

// BulkOperation applies one operation to many internships.
func (ctl *Controller) BulkOperation(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	req, ok := c.Locals("validatedBulkOperation").(models.BulkOperationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := ctl.internships.PerformBulkOperation(c.UserContext(), actor, req)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, result.Message, result)
}
