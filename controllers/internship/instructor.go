package internshipController

import (
	"internhub/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetAvailableInternships lists pending, unclaimed internships in the
// instructor's sectors.
func (ctl *Controller) GetAvailableInternships(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	list, err := ctl.internships.GetAvailableForInstructor(c.UserContext(), actor)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Available internships fetched!", list)
}

func (ctl *Controller) GetPendingInternships(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	list, err := ctl.internships.ListPendingForInstructor(c.UserContext(), actor)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending internships fetched!", list)
}

func (ctl *Controller) GetValidatedInternships(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	list, err := ctl.internships.ListValidatedForInstructor(c.UserContext(), actor)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Validated internships fetched!", list)
}

// ClaimInternship makes the caller the reviewer. A lost race answers 409.
func (ctl *Controller) ClaimInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	in, err := ctl.internships.Claim(c.UserContext(), actor, id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship claimed!", in)
}

func (ctl *Controller) ValidateInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	in, err := ctl.internships.Validate(c.UserContext(), actor, id)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship validated!", in)
}

func (ctl *Controller) RefuseInternship(c *fiber.Ctx) error {
	actor, err := ctl.actor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	comment, _ := c.Locals("validatedRefusal").(string)

	in, err := ctl.internships.Refuse(c.UserContext(), actor, id, comment)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Internship refused!", in)
}
