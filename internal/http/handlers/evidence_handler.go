package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/case-tracker/backend/internal/http/dto"
	"github.com/case-tracker/backend/internal/middleware"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EvidenceHandler struct {
	evidence  *services.EvidenceService
	uploadDir string
	log       *zap.Logger
}

func NewEvidenceHandler(evidence *services.EvidenceService, uploadDir string, log *zap.Logger) *EvidenceHandler {
	return &EvidenceHandler{evidence: evidence, uploadDir: uploadDir, log: log}
}

// UploadAttachment stores the multipart "file" under uploadDir/<case id>/
// and records its metadata.
func (h *EvidenceHandler) UploadAttachment(c *fiber.Ctx) error {
	caseID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid case id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	dir := filepath.Join(h.uploadDir, caseID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return respondError(c, h.log, fmt.Errorf("create upload dir: %w", err))
	}
	name := filepath.Base(fh.Filename)
	storagePath := filepath.Join(dir, uuid.NewString()+filepath.Ext(name))
	if err := c.SaveFile(fh, storagePath); err != nil {
		return respondError(c, h.log, fmt.Errorf("save upload: %w", err))
	}

	a := &models.Attachment{
		CaseID:      caseID,
		Filename:    name,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		StoragePath: storagePath,
	}
	if err := h.evidence.Record(c.Context(), a, middleware.GetUserID(c)); err != nil {
		if rmErr := os.Remove(storagePath); rmErr != nil {
			h.log.Warn("failed to remove orphaned upload", zap.String("path", storagePath), zap.Error(rmErr))
		}
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: a})
}

func (h *EvidenceHandler) ListAttachments(c *fiber.Ctx) error {
	caseID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid case id")
	}

	list, err := h.evidence.List(c.Context(), caseID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: list})
}
