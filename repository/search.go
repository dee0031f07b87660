package repository

import (
	"internhub/models"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope is one optional predicate of a search.
type Scope = func(*gorm.DB) *gorm.DB

// SearchCriteria is a conjunction of optional filters. A nil or empty field
// adds no predicate, so the zero value matches every internship.
type SearchCriteria struct {
	SectorID       *uint
	Status         *models.Status
	CompanyName    string
	Title          string
	StudentID      *uint
	InstructorID   *uint
	StudentName    string
	InstructorName string
	StartDateFrom  *time.Time
	StartDateTo    *time.Time
	EndDateFrom    *time.Time
	EndDateTo      *time.Time

	// SectorIDs restricts to a sector set when non-nil. An empty, non-nil
	// slice matches nothing.
	SectorIDs       []uint
	Unassigned      bool
	SubmittedBefore *time.Time
}

// Scopes folds the set filters into a list ANDed together by db.Scopes.
func (c SearchCriteria) Scopes() []Scope {
	var scopes []Scope

	if c.SectorID != nil {
		scopes = append(scopes, compare("sector_id", "=", *c.SectorID))
	}
	if c.Status != nil {
		scopes = append(scopes, compare("status", "=", *c.Status))
	}
	if c.StudentID != nil {
		scopes = append(scopes, compare("student_id", "=", *c.StudentID))
	}
	if c.InstructorID != nil {
		scopes = append(scopes, compare("instructor_id", "=", *c.InstructorID))
	}
	if v := strings.TrimSpace(c.CompanyName); v != "" {
		scopes = append(scopes, contains("company_name", v))
	}
	if v := strings.TrimSpace(c.Title); v != "" {
		scopes = append(scopes, contains("title", v))
	}
	if v := strings.TrimSpace(c.StudentName); v != "" {
		scopes = append(scopes, personNamed("student_id", v))
	}
	if v := strings.TrimSpace(c.InstructorName); v != "" {
		scopes = append(scopes, personNamed("instructor_id", v))
	}
	if c.StartDateFrom != nil {
		scopes = append(scopes, compare("start_date", ">=", *c.StartDateFrom))
	}
	if c.StartDateTo != nil {
		scopes = append(scopes, compare("start_date", "<=", *c.StartDateTo))
	}
	if c.EndDateFrom != nil {
		scopes = append(scopes, compare("end_date", ">=", *c.EndDateFrom))
	}
	if c.EndDateTo != nil {
		scopes = append(scopes, compare("end_date", "<=", *c.EndDateTo))
	}
	if c.SectorIDs != nil {
		ids := c.SectorIDs
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			if len(ids) == 0 {
				return db.Where("1 = 0")
			}
			return db.Where("internships.sector_id IN ?", ids)
		})
	}
	if c.Unassigned {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("internships.instructor_id IS NULL")
		})
	}
	if c.SubmittedBefore != nil {
		scopes = append(scopes, compare("submitted_at", "<=", *c.SubmittedBefore))
	}

	return scopes
}

// compare only receives column names and operators from this file.
func compare(column, op string, value interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("internships."+column+" "+op+" ?", value)
	}
}

func contains(column, value string) Scope {
	pattern := "%" + strings.ToLower(value) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(internships."+column+") LIKE ?", pattern)
	}
}

// personNamed matches when the referenced user's first or last name contains value.
func personNamed(column, value string) Scope {
	pattern := "%" + strings.ToLower(value) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("internships."+column+" IN (SELECT id FROM users WHERE LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", pattern, pattern)
	}
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	DefaultSortBy    = "createdAt"
)

var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"companyName": "company_name",
	"status":      "status",
	"startDate":   "start_date",
	"endDate":     "end_date",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"submittedAt": "submitted_at",
	"validatedAt": "validated_at",
}

// IsSortable reports whether key can be used as SortBy.
func IsSortable(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

// PageRequest selects one page of a sorted search. Page is 1-based.
type PageRequest struct {
	Page          int
	Limit         int
	SortBy        string
	SortDirection string
}

// Normalize applies defaults and bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if !IsSortable(p.SortBy) {
		p.SortBy = DefaultSortBy
	}
	if strings.EqualFold(p.SortDirection, "ASC") {
		p.SortDirection = "ASC"
	} else {
		p.SortDirection = "DESC"
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

func (p PageRequest) order() clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Table: "internships", Name: sortColumns[p.SortBy]},
		Desc:   p.SortDirection == "DESC",
	}
}

// Page is one slice of a paginated search.
type Page struct {
	Items      []models.Internship `json:"items"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}
