package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/case-tracker/backend/internal/http/dto"
	"github.com/case-tracker/backend/internal/middleware"
	"github.com/case-tracker/backend/internal/services"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ImportHandler struct {
	importer *services.TabularImporter
	legacy   *services.LegacyImporter
	export   *services.ExportService
	log      *zap.Logger
}

func NewImportHandler(
	importer *services.TabularImporter,
	legacy *services.LegacyImporter,
	export *services.ExportService,
	log *zap.Logger,
) *ImportHandler {
	return &ImportHandler{importer: importer, legacy: legacy, export: export, log: log}
}

// Import takes a "cases" file and an optional "observations" file. A
// workbook given as "cases" with no separate observations file is read for
// both sheets when it has an "Observations" sheet.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	casesFile, err := c.FormFile("cases")
	if err != nil {
		return badRequest(c, "cases file is required")
	}
	cases, err := readUpload(casesFile, tabular.FirstSheet, true)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var observations *tabular.Sheet
	if obsFile, err := c.FormFile("observations"); err == nil {
		observations, err = readUpload(obsFile, tabular.FirstSheet, true)
		if err != nil {
			return respondError(c, h.log, err)
		}
	} else if tabular.IsWorkbook(casesFile.Filename) {
		observations, err = readUpload(casesFile, tabular.NamedSheet(services.ObservationsSheet), true)
		if err != nil && !errors.Is(err, tabular.ErrSheetNotFound) {
			return respondError(c, h.log, err)
		}
	}

	res, err := h.importer.Import(c.Context(), cases, observations, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

// ImportLegacy takes the weekly log workbook (or a headerless CSV) as "file".
func (h *ImportHandler) ImportLegacy(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	sheet, err := readUpload(fh, tabular.YearSheet, false)
	if err != nil {
		return respondError(c, h.log, err)
	}

	res, err := h.legacy.Import(c.Context(), sheet, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

// Export streams every case. ?format=xlsx|csv|tsv, ?sheet=cases|observations
// for the delimited formats.
func (h *ImportHandler) Export(c *fiber.Ctx) error {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	var buf bytes.Buffer
	if err := h.export.Write(c.Context(), &buf, format, c.Query("sheet")); err != nil {
		return respondError(c, h.log, err)
	}

	filename := fmt.Sprintf("cases_%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}

func readUpload(fh *multipart.FileHeader, pick tabular.SheetPicker, header bool) (*tabular.Sheet, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return tabular.Read(fh.Filename, f, pick, header)
}
