package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/case-tracker/backend/internal/auth"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestIDMiddleware(), AuthMiddleware("secret", zap.NewNop()))
	app.Get("/read", func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c).String())
	})
	app.Post("/write", RequirePermission(rbac.PermWriteCases), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func bearer(t *testing.T, userID uuid.UUID, role models.Role) string {
	t.Helper()
	token, err := auth.GenerateJWT("secret", userID, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthApp()
	userID := uuid.New()

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"no header", "GET", "/read", "", fiber.StatusUnauthorized},
		{"not bearer", "GET", "/read", "Token abc", fiber.StatusUnauthorized},
		{"garbage token", "GET", "/read", "Bearer abc", fiber.StatusUnauthorized},
		{"viewer reads", "GET", "/read", bearer(t, userID, models.RoleViewer), fiber.StatusOK},
		{"viewer writes", "POST", "/write", bearer(t, userID, models.RoleViewer), fiber.StatusForbidden},
		{"editor writes", "POST", "/write", bearer(t, userID, models.RoleEditor), fiber.StatusNoContent},
		{"admin writes", "POST", "/write", bearer(t, userID, models.RoleAdmin), fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		limiter *stubLimiter
		want    int
	}{
		{"allowed", &stubLimiter{allow: true}, fiber.StatusOK},
		{"limited", &stubLimiter{allow: false}, fiber.StatusTooManyRequests},
		{"limiter down fails open", &stubLimiter{err: errors.New("redis down")}, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(RateLimitMiddleware(tt.limiter, zap.NewNop()))
			app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			require.Len(t, tt.limiter.keys, 1)
			assert.Contains(t, tt.limiter.keys[0], "rl:/x:")
		})
	}
}

func TestRequestIDMiddleware_KeepsCallerID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestRequestIDMiddleware_ReplacesUnsafeID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc 123\" injected")
	resp, err := app.Test(req)
	require.NoError(t, err)

	got := resp.Header.Get("X-Request-ID")
	assert.NotEqual(t, "abc 123\" injected", got)
	_, parseErr := uuid.Parse(got)
	assert.NoError(t, parseErr)
}
