package internshipController

import (
	"internhub/middleware"
	"internhub/models"
	internshipValidator "internhub/validators/internship"

	"github.com/gofiber/fiber/v2"
)

// GetAllInternships lists every internship (admin).
func (ctl *Controller) GetAllInternships(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	list, err := ctl.internships.ListAll(c.UserContext(), actor)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internships fetched!", list)
}

// ReassignInstructor overwrites the reviewer of an internship.
func (ctl *Controller) ReassignInstructor(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	instructorID, ok := paramID(c, "instructorId")
	if !ok {
		return invalidID(c, "instructorId")
	}

	in, err := ctl.internships.Reassign(c.UserContext(), actor, id, instructorID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor reassigned!", in)
}

func (ctl *Controller) CreateSector(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	req, ok := c.Locals("validatedSector").(models.Sector)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	sector, err := ctl.sectors.Create(c.UserContext(), actor, req.Name, req.Description)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Sector created!", sector)
}

func (ctl *Controller) GetSectors(c *fiber.Ctx) error {
	sectors, err := ctl.sectors.List(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sectors fetched!", sectors)
}

// AssignSectors replaces the sector set of an instructor.
func (ctl *Controller) AssignSectors(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	instructorID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	sectorIDs, _ := c.Locals("validatedSectorIds").([]uint)

	user, err := ctl.sectors.AssignToInstructor(c.UserContext(), actor, instructorID, sectorIDs)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sectors assigned!", user)
}

func (ctl *Controller) GetActivityLogs(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	q, ok := c.Locals("validatedActivity").(internshipValidator.ActivityFilterPage)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page, err := ctl.activity.List(c.UserContext(), actor, q.Filter, q.Page)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Activity logs fetched!", page)
}
