package handlers

import (
	"strings"

	"github.com/case-tracker/backend/internal/http/dto"
	"github.com/case-tracker/backend/internal/middleware"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxBulkIDs       = 1000
)

type CaseHandler struct {
	caseService *services.CaseService
	timeline    *services.TimelineAssembler
	bulk        *services.BulkProcessor
	log         *zap.Logger
}

func NewCaseHandler(
	caseService *services.CaseService,
	timeline *services.TimelineAssembler,
	bulk *services.BulkProcessor,
	log *zap.Logger,
) *CaseHandler {
	return &CaseHandler{caseService: caseService, timeline: timeline, bulk: bulk, log: log}
}

func (h *CaseHandler) CreateCase(c *fiber.Ctx) error {
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	in := services.NewCaseInput{
		Code:        req.Code,
		Service:     req.Service,
		Status:      models.CaseStatus(req.Status),
		Priority:    models.Priority(req.Priority),
		Responsible: req.Responsible,
		Summary:     req.Summary,
		OpenedAt:    req.OpenedAt,
		Notes:       req.Notes,
	}

	created, err := h.caseService.Create(c.Context(), in, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: created})
}

func (h *CaseHandler) ListCases(c *fiber.Ctx) error {
	filter := models.CaseFilter{
		Service:     c.Query("service"),
		Responsible: c.Query("responsible"),
		Search:      c.Query("q"),
		Limit:       min(queryInt(c, "limit", defaultListLimit), maxListLimit),
		Offset:      queryInt(c, "offset", 0),
	}
	if v := c.Query("status"); v != "" {
		st, ok := models.ParseCaseStatus(v)
		if !ok {
			return badRequest(c, "invalid status")
		}
		filter.Status = &st
	}
	if v := c.Query("priority"); v != "" {
		p, ok := models.ParsePriority(v)
		if !ok {
			return badRequest(c, "invalid priority")
		}
		filter.Priority = &p
	}
	var ok bool
	if filter.UpdatedFrom, ok = queryTime(c, "updated_from"); !ok {
		return badRequest(c, "invalid updated_from")
	}
	if filter.UpdatedTo, ok = queryTime(c, "updated_to"); !ok {
		return badRequest(c, "invalid updated_to")
	}

	cases, err := h.caseService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.ListResponse{
		Items:  cases,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}})
}

func (h *CaseHandler) GetCase(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid case id")
	}

	details, err := h.caseService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: details})
}

func (h *CaseHandler) UpdateCase(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid case id")
	}

	var req dto.UpdateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	update, err := req.ToUpdate()
	if err != nil {
		return respondError(c, h.log, err)
	}

	updated, err := h.caseService.Update(c.Context(), id, update, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *CaseHandler) BulkUpdate(c *fiber.Ctx) error {
	var req dto.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if len(req.CaseIDs) == 0 {
		return badRequest(c, "case_ids is required")
	}
	if len(req.CaseIDs) > maxBulkIDs {
		return badRequest(c, "too many case_ids")
	}

	action := services.BulkAction(strings.ToUpper(strings.TrimSpace(req.Action)))
	n, err := h.bulk.Apply(c.Context(), req.CaseIDs, action, req.Value, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.BulkUpdateResponse{Updated: n}})
}

func (h *CaseHandler) GetTimeline(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid case id")
	}

	entries, err := h.timeline.Build(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *CaseHandler) AddObservation(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid case id")
	}

	var req dto.ObservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	o, err := h.caseService.Comment(c.Context(), id, req.Content, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: o})
}

// EditObservation is open to every authenticated user; the ledger decides
// whether the caller may touch this observation.
func (h *CaseHandler) EditObservation(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid observation id")
	}

	var req dto.ObservationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	o, err := h.caseService.EditObservation(c.Context(), id, req.Content, middleware.GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: o})
}
