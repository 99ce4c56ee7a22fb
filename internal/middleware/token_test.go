package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtPkg "SupportDesk/pkg/jwt"
)

func newGuardedApp() *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := New(logger)

	app := fiber.New()
	app.Get("/guarded", m.NewTokenMiddleware, func(c *fiber.Ctx) error {
		agent, err := jwtPkg.GetAgentLoginData(c)
		if err != nil {
			return err
		}
		return c.JSON(agent)
	})

	return app
}

func TestTokenMiddleware_MissingHeader(t *testing.T) {
	app := newGuardedApp()

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	app := newGuardedApp()

	token, _, err := jwtPkg.Sign(map[string]interface{}{
		"id":    "agent-1",
		"email": "agent@example.com",
		"role":  "admin",
	}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenMiddleware_NonStringClaimsRejected(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	app := newGuardedApp()

	// Well-signed token, but the id claim is a number rather than a string.
	token, _, err := jwtPkg.Sign(map[string]interface{}{
		"id":    42,
		"email": "agent@example.com",
		"role":  "admin",
	}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
