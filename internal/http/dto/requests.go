package dto

import (
	"fmt"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

type CreateCaseRequest struct {
	Code        string     `json:"code"`
	Service     string     `json:"service"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Responsible *string    `json:"responsible,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	Notes       string     `json:"notes,omitempty"` // first observation
}

// UpdateCaseRequest is a partial update; absent fields are left alone.
type UpdateCaseRequest struct {
	Code        *string    `json:"code,omitempty"`
	Service     *string    `json:"service,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Responsible *string    `json:"responsible,omitempty"`
	Summary     *string    `json:"summary,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// ToUpdate validates the enum fields.
func (r UpdateCaseRequest) ToUpdate() (models.CaseUpdate, error) {
	u := models.CaseUpdate{
		Code:        r.Code,
		Service:     r.Service,
		Responsible: r.Responsible,
		Summary:     r.Summary,
		ClosedAt:    r.ClosedAt,
		Notes:       r.Notes,
	}
	if r.Status != nil {
		st, ok := models.ParseCaseStatus(*r.Status)
		if !ok {
			return u, fmt.Errorf("%w: unknown status %q", models.ErrValidation, *r.Status)
		}
		u.Status = &st
	}
	if r.Priority != nil {
		p, ok := models.ParsePriority(*r.Priority)
		if !ok {
			return u, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, *r.Priority)
		}
		u.Priority = &p
	}
	return u, nil
}

type BulkUpdateRequest struct {
	CaseIDs []uuid.UUID `json:"case_ids"`
	Action  string      `json:"action"` // CLOSE / ASSIGN / PRIORITY
	Value   string      `json:"value,omitempty"`
}

type ObservationRequest struct {
	Content string `json:"content"`
}
