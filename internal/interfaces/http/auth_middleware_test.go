package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/avicola-api/pkg/jwt"
)

const testSecret = "secreto-de-test"

// buildAuthApp app mínima con el middleware de auth y una ruta protegida por rol.
func buildAuthApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	grp := app.Group("/api", AuthMiddleware(testSecret))
	handlers := []fiber.Handler{}
	if len(allowedRoles) > 0 {
		handlers = append(handlers, RequireRole(allowedRoles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    GetUserID(c),
			"company_id": GetCompanyID(c),
			"role":       GetRole(c),
		})
	})
	grp.Get("/protegida", handlers...)
	return app
}

func tokenFor(t *testing.T, userID, companyID, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, userID, companyID, role, "avicola-api", 5)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/protegida", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	resp := doRequest(t, buildAuthApp(), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildAuthApp()
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Basic abc123").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer ").StatusCode)
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("otro-secreto", "u1", "c1", "admin", "avicola-api", 5)
	require.NoError(t, err)
	resp := doRequest(t, buildAuthApp(), "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValidoExponeLocals(t *testing.T) {
	token := tokenFor(t, "u1", "c1", "galponero")
	resp := doRequest(t, buildAuthApp(), "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app := buildAuthApp("admin", "tecnico")

	// Rol permitido
	resp := doRequest(t, app, "Bearer "+tokenFor(t, "u1", "c1", "tecnico"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Rol no permitido -> 403
	resp = doRequest(t, app, "Bearer "+tokenFor(t, "u1", "c1", "galponero"))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Token sin rol -> 401
	resp = doRequest(t, app, "Bearer "+tokenFor(t, "u1", "c1", ""))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
