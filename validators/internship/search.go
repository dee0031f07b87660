package internshipValidator

import (
	"internhub/middleware"
	"internhub/models"
	"internhub/repository"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type searchRequest struct {
	SectorID       uint   `query:"sectorId"`
	Status         string `query:"status" validate:"omitempty,status"`
	CompanyName    string `query:"companyName" validate:"max=200"`
	Title          string `query:"title" validate:"max=200"`
	StudentID      uint   `query:"studentId"`
	InstructorID   uint   `query:"instructorId"`
	StudentName    string `query:"studentName" validate:"max=100"`
	InstructorName string `query:"instructorName" validate:"max=100"`
	StartDateFrom  string `query:"startDateFrom" validate:"omitempty,datetime=2006-01-02"`
	StartDateTo    string `query:"startDateTo" validate:"omitempty,datetime=2006-01-02"`
	EndDateFrom    string `query:"endDateFrom" validate:"omitempty,datetime=2006-01-02"`
	EndDateTo      string `query:"endDateTo" validate:"omitempty,datetime=2006-01-02"`
	Unassigned     bool   `query:"unassigned"`

	Paged         string `query:"paged" validate:"omitempty,oneof=true false"`
	Page          int    `query:"page" validate:"omitempty,min=1"`
	Limit         int    `query:"limit" validate:"omitempty,min=1,max=100"`
	SortBy        string `query:"sortBy" validate:"omitempty,sortable"`
	SortDirection string `query:"sortDirection" validate:"omitempty,oneof=ASC DESC asc desc"`
}

// SearchQuery is the validated form of the search endpoint's query string.
type SearchQuery struct {
	Criteria repository.SearchCriteria
	Page     repository.PageRequest
	// Paged is false when the caller asked for every match at once.
	Paged bool
}

// Search validates the search query string and stores a SearchQuery under
// "validatedSearch".
func Search() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(searchRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errors := check(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSearch", reqData.toQuery())
		return c.Next()
	}
}

func (r *searchRequest) toQuery() SearchQuery {
	c := repository.SearchCriteria{
		CompanyName:    strings.TrimSpace(r.CompanyName),
		Title:          strings.TrimSpace(r.Title),
		StudentName:    strings.TrimSpace(r.StudentName),
		InstructorName: strings.TrimSpace(r.InstructorName),
		StartDateFrom:  parseDate(r.StartDateFrom),
		StartDateTo:    endOfDay(parseDate(r.StartDateTo)),
		EndDateFrom:    parseDate(r.EndDateFrom),
		EndDateTo:      endOfDay(parseDate(r.EndDateTo)),
		Unassigned:     r.Unassigned,
	}
	if r.SectorID != 0 {
		id := r.SectorID
		c.SectorID = &id
	}
	if r.StudentID != 0 {
		id := r.StudentID
		c.StudentID = &id
	}
	if r.InstructorID != 0 {
		id := r.InstructorID
		c.InstructorID = &id
	}
	if r.Status != "" {
		status, _ := models.ParseStatus(r.Status)
		c.Status = &status
	}
	return SearchQuery{
		Criteria: c,
		Page: repository.PageRequest{
			Page:          r.Page,
			Limit:         r.Limit,
			SortBy:        r.SortBy,
			SortDirection: strings.ToUpper(r.SortDirection),
		},
		Paged: r.Paged != "false",
	}
}

// endOfDay makes an inclusive upper date bound cover the whole day.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}
