package internshipValidator

import (
	"internhub/middleware"
	"internhub/models"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type internshipRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=5000"`
	CompanyName    string `json:"companyName" validate:"required,max=200"`
	CompanyAddress string `json:"companyAddress" validate:"max=300"`
	StartDate      string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"required,datetime=2006-01-02"`
	SectorID       uint   `json:"sectorId" validate:"required"`
}

// Internship validates the create and update payload and stores
// models.InternshipDetails under "validatedInternship".
func Internship() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(internshipRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.CompanyName = strings.TrimSpace(reqData.CompanyName)

		errors := check(reqData)
		start, end := parseDate(reqData.StartDate), parseDate(reqData.EndDate)
		if start != nil && end != nil && start.After(*end) {
			errors["endDate"] = "End date must not be before start date!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedInternship", models.InternshipDetails{
			Title:          reqData.Title,
			Description:    reqData.Description,
			CompanyName:    reqData.CompanyName,
			CompanyAddress: reqData.CompanyAddress,
			StartDate:      *start,
			EndDate:        *end,
			SectorID:       reqData.SectorID,
		})
		return c.Next()
	}
}

type refusalRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// Refusal validates the instructor's refusal comment.
func Refusal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(refusalRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Comment = strings.TrimSpace(reqData.Comment)

		if errors := check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRefusal", reqData.Comment)
		return c.Next()
	}
}

type bulkRequest struct {
	OperationType   string `json:"operationType" validate:"required,bulkop"`
	InternshipIDs   []uint `json:"internshipIds" validate:"required,min=1,max=500,dive,gt=0"`
	NewStatus       string `json:"newStatus" validate:"omitempty,status"`
	InstructorID    *uint  `json:"instructorId" validate:"omitempty,gt=0"`
	RejectionReason string `json:"rejectionReason" validate:"max=2000"`
}

// BulkOperation validates a bulk request and stores models.BulkOperationRequest
// under "validatedBulkOperation".
func BulkOperation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(bulkRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := check(reqData)
		op := models.BulkOperationType(strings.ToUpper(strings.TrimSpace(reqData.OperationType)))
		switch op {
		case models.BulkUpdateStatus:
			if reqData.NewStatus == "" {
				errors["newStatus"] = "newStatus is required for UPDATE_STATUS!"
			}
		case models.BulkAssignInstructor:
			if reqData.InstructorID == nil {
				errors["instructorId"] = "instructorId is required for ASSIGN_INSTRUCTOR!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		req := models.BulkOperationRequest{
			OperationType:   op,
			InternshipIDs:   reqData.InternshipIDs,
			InstructorID:    reqData.InstructorID,
			RejectionReason: reqData.RejectionReason,
		}
		if reqData.NewStatus != "" {
			status, _ := models.ParseStatus(reqData.NewStatus)
			req.NewStatus = &status
		}

		c.Locals("validatedBulkOperation", req)
		return c.Next()
	}
}
