package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paddock/apperrors"
	"paddock/config"
	"paddock/database"
	"paddock/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfig(t *testing.T) {
	t.Helper()
	config.LoadConfig()
	config.AppConfig.JWTKey = "test-secret"
	config.AppConfig.RateLimitMax = 2
	config.AppConfig.RateLimitWindowSeconds = 60
}

func seedUser(t *testing.T, email string) models.User {
	t.Helper()
	user := models.User{Name: "Ayrton", Email: email, Password: "x", Role: models.RoleUser}
	require.NoError(t, database.Database.Db.Create(&user).Error)
	return user
}

func bearer(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func whoAmI(c *fiber.Ctx) error {
	return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"userId": CurrentUserID(c)})
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestJWTMiddleware(t *testing.T) {
	setupConfig(t)
	_, err := database.OpenSqlite(t.Name())
	require.NoError(t, err)
	user := seedUser(t, "a@example.com")
	app := fiber.New()
	app.Get("/me", JWTMiddleware, whoAmI)

	token, err := GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)

	resp := bearer(t, app, "/me", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, float64(user.ID), body["data"].(map[string]interface{})["userId"])

	for name, header := range map[string]string{
		"missing":   "",
		"no bearer": token,
		"garbage":   "Bearer not-a-token",
	} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

func TestJWTMiddlewareChecksAccount(t *testing.T) {
	setupConfig(t)
	_, err := database.OpenSqlite(t.Name())
	require.NoError(t, err)
	user := seedUser(t, "b@example.com")
	app := fiber.New()
	app.Get("/me", JWTMiddleware, whoAmI)
	app.Get("/maybe", OptionalJWTMiddleware, whoAmI)

	token, err := GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	ghost, err := GenerateJWT(user.ID+100, "Ghost", models.RoleUser, "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, bearer(t, app, "/me", ghost).StatusCode)

	require.NoError(t, database.Database.Db.Model(&user).Update("is_blocked", true).Error)
	assert.Equal(t, fiber.StatusForbidden, bearer(t, app, "/me", token).StatusCode)
	resp := bearer(t, app, "/maybe", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decode(t, resp.Body)["data"].(map[string]interface{})["userId"])

	// an elapsed lockout no longer suspends the account
	past := time.Now().Add(-time.Minute)
	require.NoError(t, database.Database.Db.Model(&user).Update("blocked_until", past).Error)
	assert.Equal(t, fiber.StatusOK, bearer(t, app, "/me", token).StatusCode)
}

func TestJWTMiddlewareRejectsOtherKey(t *testing.T) {
	setupConfig(t)
	app := fiber.New()
	app.Get("/me", JWTMiddleware, whoAmI)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 1})
	signed, err := forged.SignedString([]byte("someone-else"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalJWTMiddleware(t *testing.T) {
	setupConfig(t)
	app := fiber.New()
	app.Get("/maybe", OptionalJWTMiddleware, whoAmI)

	resp, err := app.Test(httptest.NewRequest("GET", "/maybe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decode(t, resp.Body)["data"].(map[string]interface{})["userId"])
}

func TestRateLimit(t *testing.T) {
	setupConfig(t)
	app := fiber.New()
	app.Get("/ping", RateLimit(), whoAmI)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, fiber.StatusTooManyRequests}, codes)
}

func TestErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return ErrorResponse(c, apperrors.ErrNotFound, "Vehicle not found!")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return ErrorResponse(c, io.ErrUnexpectedEOF, "leaks internals")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Vehicle not found!", decode(t, resp.Body)["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.False(t, strings.Contains(decode(t, resp.Body)["message"].(string), "internals"))
}

func TestMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics)
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", MetricsHandler())

	_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `paddock_http_requests_total{method="GET",route="/ping",status="200"}`)
}
