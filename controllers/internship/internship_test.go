package internshipController_test

import (
	"encoding/json"
	"fmt"
	"internhub/config"
	internshipController "internhub/controllers/internship"
	"internhub/database"
	"internhub/middleware"
	"internhub/models"
	"internhub/repository"
	"internhub/routers/internshipRoutes"
	"internhub/services"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	t   *testing.T
	app *fiber.App

	it                    models.Sector
	admin, student, other models.User
	instructor, latecomer models.User
}

func newServer(t *testing.T) *server {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "controller-test"}

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "api.db")+"?_busy_timeout=5000")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	sectors := repository.NewSectorRepository(db)
	activity := services.NewActivityService(repository.NewActivityLogRepository(db))
	svc := services.NewInternshipService(repository.NewInternshipRepository(db), users, sectors, nil, activity, services.Options{})
	ctl := internshipController.New(svc, services.NewSectorService(sectors, users, activity), activity)

	app := fiber.New()
	internshipRoutes.SetupInternshipRoutes(app, ctl, 60)

	s := &server{t: t, app: app, it: models.Sector{Name: "IT"}}
	require.NoError(t, db.Create(&s.it).Error)
	mk := func(name string, role models.Role, sectors ...models.Sector) models.User {
		u := models.User{FirstName: name, LastName: "Test", Email: name + "@example.com", Password: "x", Role: role, Sectors: sectors}
		require.NoError(t, db.Create(&u).Error)
		return u
	}
	s.admin = mk("admin", models.RoleAdmin)
	s.student = mk("alice", models.RoleStudent)
	s.other = mk("bob", models.RoleStudent)
	s.instructor = mk("claire", models.RoleInstructor, s.it)
	s.latecomer = mk("dave", models.RoleInstructor, s.it)
	return s
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *server) do(as models.User, method, path, body string) (int, response) {
	s.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as.ID != 0 {
		token, err := middleware.GenerateJWT(as.ID, as.Role, as.Email)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	var out response
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (s *server) createSubmitted() uint {
	s.t.Helper()
	code, res := s.do(s.student, "POST", "/api/student/internships",
		fmt.Sprintf(`{"title":"Backend intern","companyName":"Acme","startDate":"2026-03-01","endDate":"2026-08-31","sectorId":%d}`, s.it.ID))
	require.Equal(s.t, fiber.StatusCreated, code, res.Message)
	var in models.Internship
	require.NoError(s.t, json.Unmarshal(res.Data, &in))
	assert.Equal(s.t, models.StatusDraft, in.Status)

	code, res = s.do(s.student, "POST", fmt.Sprintf("/api/student/internships/%d/submit", in.ID), "")
	require.Equal(s.t, fiber.StatusOK, code, res.Message)
	return in.ID
}

func TestWorkflowOverHTTP(t *testing.T) {
	s := newServer(t)
	id := s.createSubmitted()

	code, res := s.do(s.instructor, "GET", "/api/instructor/internships/available", "")
	require.Equal(t, fiber.StatusOK, code)
	var available []models.Internship
	require.NoError(t, json.Unmarshal(res.Data, &available))
	require.Len(t, available, 1)

	code, _ = s.do(s.instructor, "POST", fmt.Sprintf("/api/instructor/internships/%d/claim", id), "")
	assert.Equal(t, fiber.StatusOK, code)

	code, res = s.do(s.latecomer, "POST", fmt.Sprintf("/api/instructor/internships/%d/claim", id), "")
	assert.Equal(t, fiber.StatusConflict, code)
	assert.False(t, res.Status)

	code, res = s.do(s.instructor, "POST", fmt.Sprintf("/api/instructor/internships/%d/refuse", id), `{"comment":""}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Equal(t, "Validation failed!", res.Message)

	code, _ = s.do(s.instructor, "POST", fmt.Sprintf("/api/instructor/internships/%d/refuse", id), `{"comment":"Add a tutor"}`)
	assert.Equal(t, fiber.StatusOK, code)

	code, res = s.do(s.student, "PUT", fmt.Sprintf("/api/student/internships/%d", id),
		fmt.Sprintf(`{"title":"Backend intern (tutored)","companyName":"Acme","startDate":"2026-03-01","endDate":"2026-08-31","sectorId":%d}`, s.it.ID))
	require.Equal(t, fiber.StatusOK, code, res.Message)

	code, _ = s.do(s.student, "POST", fmt.Sprintf("/api/student/internships/%d/submit", id), "")
	assert.Equal(t, fiber.StatusOK, code)

	code, res = s.do(s.latecomer, "POST", fmt.Sprintf("/api/instructor/internships/%d/validate", id), "")
	require.Equal(t, fiber.StatusOK, code)
	var validated models.Internship
	require.NoError(t, json.Unmarshal(res.Data, &validated))
	assert.Equal(t, models.StatusValidated, validated.Status)
	assert.Equal(t, s.latecomer.ID, *validated.InstructorID)

	code, res = s.do(s.student, "PUT", fmt.Sprintf("/api/student/internships/%d", id),
		fmt.Sprintf(`{"title":"Too late","companyName":"Acme","startDate":"2026-03-01","endDate":"2026-08-31","sectorId":%d}`, s.it.ID))
	assert.Equal(t, fiber.StatusConflict, code, res.Message)
}

func TestRoleGatesAndErrors(t *testing.T) {
	s := newServer(t)
	id := s.createSubmitted()

	code, _ := s.do(models.User{}, "GET", "/api/student/internships", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = s.do(s.student, "GET", "/api/admin/internships", "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = s.do(s.other, "GET", fmt.Sprintf("/api/student/internships/%d", id), "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, res := s.do(s.admin, "GET", "/api/admin/internships/9999", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Internship not found: 9999", res.Message)

	code, _ = s.do(s.admin, "GET", "/api/admin/internships/abc", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, _ = s.do(s.instructor, "POST", fmt.Sprintf("/api/instructor/internships/%d/validate", id), "")
	assert.Equal(t, fiber.StatusOK, code)
	code, res = s.do(s.instructor, "POST", fmt.Sprintf("/api/instructor/internships/%d/validate", id), "")
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "Cannot validate internship with status VALIDATED", res.Message)
}

func TestSearchAndBulkOverHTTP(t *testing.T) {
	s := newServer(t)
	first := s.createSubmitted()
	second := s.createSubmitted()

	code, res := s.do(s.admin, "GET", "/api/internships/search?status=PENDING&limit=1&sortBy=id&sortDirection=ASC", "")
	require.Equal(t, fiber.StatusOK, code, res.Message)
	var page repository.Page
	require.NoError(t, json.Unmarshal(res.Data, &page))
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first, page.Items[0].ID)

	code, res = s.do(s.admin, "GET", "/api/internships/search?paged=false&companyName=acm", "")
	require.Equal(t, fiber.StatusOK, code)
	var all []models.Internship
	require.NoError(t, json.Unmarshal(res.Data, &all))
	assert.Len(t, all, 2)

	code, _ = s.do(s.student, "GET", "/api/internships/search", "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, res = s.do(s.admin, "POST", "/api/bulk/internships",
		fmt.Sprintf(`{"operationType":"DELETE","internshipIds":[%d,%d,999]}`, first, second))
	require.Equal(t, fiber.StatusOK, code, res.Message)
	assert.Equal(t, "Bulk operation completed: 2 succeeded, 1 failed out of 3 requested", res.Message)
	var result models.BulkOperationResult
	require.NoError(t, json.Unmarshal(res.Data, &result))
	assert.Equal(t, "Internship not found: 999", result.Results[2].Message)

	code, res = s.do(s.admin, "GET", "/api/admin/activity-logs?action=INTERNSHIP_DELETE", "")
	require.Equal(t, fiber.StatusOK, code)
	var logs repository.ActivityPage
	require.NoError(t, json.Unmarshal(res.Data, &logs))
	assert.Equal(t, int64(2), logs.Total)
}

func TestSectorAdminOverHTTP(t *testing.T) {
	s := newServer(t)

	code, res := s.do(s.admin, "POST", "/api/admin/sectors", `{"name":"Finance"}`)
	require.Equal(t, fiber.StatusCreated, code, res.Message)
	var finance models.Sector
	require.NoError(t, json.Unmarshal(res.Data, &finance))

	code, res = s.do(s.admin, "POST", "/api/admin/sectors", `{"name":"finance"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code, res.Message)

	code, res = s.do(s.admin, "PUT", fmt.Sprintf("/api/admin/instructors/%d/sectors", s.latecomer.ID),
		fmt.Sprintf(`{"sectorIds":[%d]}`, finance.ID))
	require.Equal(t, fiber.StatusOK, code, res.Message)

	id := s.createSubmitted()
	code, _ = s.do(s.latecomer, "POST", fmt.Sprintf("/api/instructor/internships/%d/claim", id), "")
	assert.Equal(t, fiber.StatusForbidden, code)
}
