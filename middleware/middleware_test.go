package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"internhub/config"
	"internhub/models"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T, handlers ...fiber.Handler) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret"}
	app := fiber.New()
	chain := append([]fiber.Handler{JWTMiddleware}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{
			"userId": c.Locals("userId"),
			"role":   c.Locals("role"),
		})
	})
	app.Get("/", chain...)
	return app
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, app *fiber.App, token string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestJWTMiddleware(t *testing.T) {
	app := testApp(t)

	code, body := call(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.False(t, body.Status)

	code, _ = call(t, app, "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	token, err := GenerateJWT(7, models.RoleInstructor, "claire@example.com")
	require.NoError(t, err)
	code, body = call(t, app, token)
	require.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"userId":7,"role":"INSTRUCTOR"}`, string(body.Data))

	config.AppConfig.JWTKey = "rotated"
	code, _ = call(t, app, token)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestRequireRoles(t *testing.T) {
	app := testApp(t, RequireRoles(models.RoleAdmin, models.RoleInstructor))

	admin, err := GenerateJWT(1, models.RoleAdmin, "admin@example.com")
	require.NoError(t, err)
	code, _ := call(t, app, admin)
	assert.Equal(t, fiber.StatusOK, code)

	student, err := GenerateJWT(2, models.RoleStudent, "alice@example.com")
	require.NoError(t, err)
	code, body := call(t, app, student)
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, "You do not have permission to access this resource!", body.Message)
}

func TestRateLimitPerUser(t *testing.T) {
	app := testApp(t, RateLimit(1, 2))

	alice, err := GenerateJWT(2, models.RoleStudent, "alice@example.com")
	require.NoError(t, err)
	bob, err := GenerateJWT(3, models.RoleStudent, "bob@example.com")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		code, _ := call(t, app, alice)
		assert.Equal(t, fiber.StatusOK, code)
	}
	code, _ := call(t, app, alice)
	assert.Equal(t, fiber.StatusTooManyRequests, code)

	code, _ = call(t, app, bob)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{fmt.Errorf("%w: Internship not found: 9", models.ErrNotFound), 404, "Internship not found: 9"},
		{fmt.Errorf("%w: Not your internship", models.ErrUnauthorized), 403, "Not your internship"},
		{&models.TransitionError{From: models.StatusDraft, Operation: models.OpClaim}, 409, "Cannot claim internship with status DRAFT"},
		{fmt.Errorf("%w: internship 3 is already claimed", models.ErrAlreadyClaimed), 409, "internship 3 is already claimed"},
		{fmt.Errorf("%w: only DRAFT or REFUSED internships can be modified", models.ErrNotModifiable), 409, "only DRAFT or REFUSED internships can be modified"},
		{fmt.Errorf("%w: refusal comment is required", models.ErrValidation), 422, "refusal comment is required"},
		{errors.New("dial tcp: connection refused"), 500, "Something went wrong, please try again later"},
	}

	for _, tc := range cases {
		app := fiber.New()
		err := tc.err
		app.Get("/", func(c *fiber.Ctx) error { return ErrorResponse(c, err) })
		resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, testErr)
		var body envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, tc.code, resp.StatusCode, tc.message)
		assert.Equal(t, tc.message, body.Message)
		assert.False(t, body.Status)
	}
}
