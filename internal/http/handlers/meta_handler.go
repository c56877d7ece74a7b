package handlers

import (
	"github.com/case-tracker/backend/internal/http/dto"
	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type MetaEnums struct {
	Statuses      []MetaOption `json:"statuses"`
	Priorities    []MetaOption `json:"priorities"`
	BulkActions   []MetaOption `json:"bulk_actions"`
	Roles         []MetaOption `json:"roles"`
	ExportFormats []MetaOption `json:"export_formats"`
}

var predefinedEnums = MetaEnums{
	Statuses: []MetaOption{
		{ID: string(models.CaseStatusOpen), Label: "Open"},
		{ID: string(models.CaseStatusStandby), Label: "Standby"},
		{ID: string(models.CaseStatusMonitoring), Label: "Monitoring"},
		{ID: string(models.CaseStatusClosed), Label: "Closed"},
	},
	Priorities: []MetaOption{
		{ID: string(models.PriorityCritical), Label: "Critical"},
		{ID: string(models.PriorityHigh), Label: "High"},
		{ID: string(models.PriorityMedium), Label: "Medium"},
		{ID: string(models.PriorityLow), Label: "Low"},
	},
	BulkActions: []MetaOption{
		{ID: string(services.BulkClose), Label: "Close"},
		{ID: string(services.BulkAssign), Label: "Assign responsible"},
		{ID: string(services.BulkPriority), Label: "Set priority"},
	},
	Roles: []MetaOption{
		{ID: string(models.RoleViewer), Label: "Viewer"},
		{ID: string(models.RoleEditor), Label: "Editor"},
		{ID: string(models.RoleAdmin), Label: "Admin"},
	},
	ExportFormats: []MetaOption{
		{ID: string(services.ExportXLSX), Label: "Excel workbook"},
		{ID: string(services.ExportCSV), Label: "CSV"},
		{ID: string(services.ExportTSV), Label: "TSV"},
	},
}

func (h *MetaHandler) GetEnums(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: predefinedEnums})
}
