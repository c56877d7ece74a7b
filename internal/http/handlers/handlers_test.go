package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/case-tracker/backend/internal/http/dto"
	"github.com/case-tracker/backend/internal/middleware"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"schema", &models.SchemaError{Missing: []string{"code"}}, fiber.StatusBadRequest, ""},
		{"validation", fmt.Errorf("%w: code is required", models.ErrValidation), fiber.StatusBadRequest, ""},
		{"format", fmt.Errorf("%w: \"a.pdf\"", tabular.ErrUnsupportedFormat), fiber.StatusBadRequest, ""},
		{"not found", fmt.Errorf("case X: %w", models.ErrNotFound), fiber.StatusNotFound, "not found"},
		{"forbidden", models.ErrForbidden, fiber.StatusForbidden, "permission denied"},
		{"conflict", fmt.Errorf("case \"A\": %w", models.ErrConflict), fiber.StatusConflict, ""},
		{"internal", errors.New("connection reset"), fiber.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(middleware.RequestIDMiddleware())
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, zap.NewNop(), tt.err)
			})

			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-1")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "req-1", body.RequestID)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Error)
			} else {
				assert.Equal(t, tt.err.Error(), body.Error)
			}
		})
	}
}

func TestCaseHandler_RejectsBadInput(t *testing.T) {
	h := NewCaseHandler(nil, nil, nil, zap.NewNop())
	app := fiber.New()
	app.Get("/cases", h.ListCases)
	app.Get("/cases/:id", h.GetCase)
	app.Post("/cases/bulk-update", h.BulkUpdate)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"unknown status filter", fiber.MethodGet, "/cases?status=archived", ""},
		{"unknown priority filter", fiber.MethodGet, "/cases?priority=urgent", ""},
		{"bad date filter", fiber.MethodGet, "/cases?updated_from=yesterday", ""},
		{"bad case id", fiber.MethodGet, "/cases/not-a-uuid", ""},
		{"bulk without ids", fiber.MethodPost, "/cases/bulk-update", `{"action":"CLOSE","case_ids":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestMetaHandler_GetEnums(t *testing.T) {
	app := fiber.New()
	app.Get("/meta/enums", NewMetaHandler().GetEnums)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/meta/enums", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		OK   bool      `json:"ok"`
		Data MetaEnums `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.OK)
	require.Len(t, body.Data.Statuses, len(models.AllCaseStatuses))
	for i, st := range models.AllCaseStatuses {
		assert.Equal(t, string(st), body.Data.Statuses[i].ID)
	}
	require.Len(t, body.Data.Priorities, len(models.AllPriorities))
}
