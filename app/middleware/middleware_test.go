package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"inventory-automation/app/middleware"
	"inventory-automation/config"
	"inventory-automation/pkg/ctxutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/", middleware.Auth(secret, "ADMIN"), func(c *fiber.Ctx) error {
		uid, _ := c.Locals(ctxutil.UserIDKey).(int64)
		return c.JSON(fiber.Map{"uid": uid})
	})
	return app
}

func TestAuth(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc", fiber.StatusUnauthorized},
		{"non admin", "Bearer " + signToken(t, jwt.MapClaims{"uid": 7, "role": "CUSTOMER", "exp": exp}), fiber.StatusUnauthorized},
		{"no uid", "Bearer " + signToken(t, jwt.MapClaims{"role": "ADMIN", "exp": exp}), fiber.StatusUnauthorized},
		{"admin", "Bearer " + signToken(t, jwt.MapClaims{"uid": 7, "role": "ADMIN", "exp": exp}), fiber.StatusOK},
	}

	app := newAuthApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthInternal(t *testing.T) {
	app := fiber.New()
	app.Post("/", middleware.AuthInternal(&config.Config{InternalAuthHeader: "s3cret"}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("POST", "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/", nil)
	req.Header.Set(string(middleware.AuthInternalHeaderKey), "s3cret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequestIDMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals(ctxutil.RequestIDKey).(string)
		return c.SendString(id)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(middleware.RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(middleware.RequestIDHeader), 36)
}
