package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appHTTP "github.com/jhoicas/costing-engine/internal/interfaces/http"
	"github.com/jhoicas/costing-engine/pkg/jwt"
)

const testSecret = "secreto-de-prueba"

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protegida", appHTTP.AuthMiddleware(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   appHTTP.GetUserID(c),
			"tenant_id": appHTTP.GetTenantID(c),
		})
	})
	return app
}

func TestAuthMiddleware_SinHeaderEs401(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protegida", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalidoEs401(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protegida", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenConOtraFirmaEs401(t *testing.T) {
	app := newProtectedApp()

	token, err := jwt.Generate("otro-secreto", "user-1", "tenant-1", "test", 5)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValidoExtraeTenant(t *testing.T) {
	app := newProtectedApp()

	token, err := jwt.Generate(testSecret, "user-1", "tenant-1", "test", 5)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_TokenSinTenantEs401(t *testing.T) {
	app := newProtectedApp()

	token, err := jwt.Generate(testSecret, "user-1", "", "test", 5)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
