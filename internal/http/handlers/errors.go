package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/case-tracker/backend/internal/http/dto"
	"github.com/case-tracker/backend/internal/middleware"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Anything unexpected
// is logged and reported as a bare 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	reqID := middleware.GetRequestID(c)

	var schemaErr *models.SchemaError
	status, msg := fiber.StatusInternalServerError, "internal error"
	switch {
	case errors.As(err, &schemaErr):
		status, msg = fiber.StatusBadRequest, schemaErr.Error()
	case errors.Is(err, models.ErrValidation), errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, tabular.ErrSheetNotFound):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, models.ErrForbidden):
		status, msg = fiber.StatusForbidden, "permission denied"
	case errors.Is(err, models.ErrConflict):
		status, msg = fiber.StatusConflict, err.Error()
	default:
		log.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, ok := tabular.ParseTime(v)
	if !ok {
		return nil, false
	}
	return &t, true
}
