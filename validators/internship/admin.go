package internshipValidator

import (
	"internhub/middleware"
	"internhub/models"
	"internhub/repository"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type sectorRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CreateSector validates a new sector.
func CreateSector() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(sectorRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)

		if errors := check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSector", models.Sector{Name: reqData.Name, Description: reqData.Description})
		return c.Next()
	}
}

type assignSectorsRequest struct {
	SectorIDs []uint `json:"sectorIds" validate:"dive,gt=0"`
}

// AssignSectors validates the full sector set of an instructor. An empty list
// removes every sector.
func AssignSectors() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(assignSectorsRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		ids := reqData.SectorIDs
		if ids == nil {
			ids = []uint{}
		}
		c.Locals("validatedSectorIds", ids)
		return c.Next()
	}
}

type activityRequest struct {
	ActorID    uint   `query:"actorId"`
	Action     string `query:"action" validate:"max=50"`
	EntityType string `query:"entityType" validate:"omitempty,oneof=INTERNSHIP SECTOR USER"`
	EntityID   uint   `query:"entityId"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ActivityQuery validates the activity log filters and stores an ActivityQuery
// under "validatedActivity".
func ActivityQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(activityRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errors := check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		f := repository.ActivityFilter{
			Action:     strings.ToUpper(reqData.Action),
			EntityType: reqData.EntityType,
			From:       parseDate(reqData.From),
			To:         endOfDay(parseDate(reqData.To)),
		}
		if reqData.ActorID != 0 {
			id := reqData.ActorID
			f.ActorID = &id
		}
		if reqData.EntityID != 0 {
			id := reqData.EntityID
			f.EntityID = &id
		}
		c.Locals("validatedActivity", ActivityFilterPage{
			Filter: f,
			Page:   repository.PageRequest{Page: reqData.Page, Limit: reqData.Limit},
		})
		return c.Next()
	}
}

// ActivityFilterPage is the validated activity log query.
type ActivityFilterPage struct {
	Filter repository.ActivityFilter
	Page   repository.PageRequest
}
