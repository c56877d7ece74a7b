package services

import (
	"context"
	"fmt"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRecorder is the single path through which user-attributable case
// edits are applied. It does not open transactions; callers wrap it.
type AuditRecorder struct {
	cases  caseStore
	audits auditStore
	log    *zap.Logger
	now    func() time.Time
}

func NewAuditRecorder(cases caseStore, audits auditStore, log *zap.Logger) *AuditRecorder {
	return &AuditRecorder{cases: cases, audits: audits, log: log, now: utcNow}
}

// DiffAndRecord applies the proposed values that differ from existing,
// persists the case and writes one audit entry describing the diff.
// With nothing to change it touches nothing and returns (nil, nil).
func (r *AuditRecorder) DiffAndRecord(ctx context.Context, existing *models.Case, proposed []models.FieldValue, actorID uuid.UUID, action models.AuditAction) (*models.AuditEntry, error) {
	changes, err := models.DiffCase(existing, proposed)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, nil
	}

	for _, fv := range proposed {
		if _, changed := changes[fv.Name]; !changed {
			continue
		}
		if err := models.SetCaseField(existing, fv.Name, fv.Value); err != nil {
			return nil, err
		}
	}

	now := r.now()
	existing.UpdatedAt = now
	if err := r.cases.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}

	entry := &models.AuditEntry{
		CaseID:    existing.ID,
		UserID:    actorID,
		Action:    action,
		Details:   models.ChangesDetails(changes),
		Timestamp: now,
	}
	if err := r.audits.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}

	r.log.Debug("case changed",
		zap.String("case_id", existing.ID.String()),
		zap.String("action", string(action)),
		zap.Int("fields", len(changes)),
	)
	return entry, nil
}

// RecordCreate writes the CREATE entry of a freshly created case.
func (r *AuditRecorder) RecordCreate(ctx context.Context, c *models.Case, actorID uuid.UUID) (*models.AuditEntry, error) {
	blank := models.Case{}
	changes, err := models.DiffCase(&blank, []models.FieldValue{
		{Name: models.FieldCode, Value: c.Code},
		{Name: models.FieldService, Value: c.Service},
		{Name: models.FieldStatus, Value: c.Status},
		{Name: models.FieldPriority, Value: c.Priority},
		{Name: models.FieldResponsible, Value: c.Responsible},
	})
	if err != nil {
		return nil, err
	}
	return r.append(ctx, c.ID, actorID, models.AuditActionCreate, models.ChangesDetails(changes))
}

// RecordComment links a user-added observation into the audit trail.
func (r *AuditRecorder) RecordComment(ctx context.Context, o *models.Observation, actorID uuid.UUID) (*models.AuditEntry, error) {
	return r.append(ctx, o.CaseID, actorID, models.AuditActionComment, map[string]any{
		"observation_id": o.ID.String(),
	})
}

// RecordEvidence writes the EVIDENCE entry for an attachment stored elsewhere.
func (r *AuditRecorder) RecordEvidence(ctx context.Context, a *models.Attachment, actorID uuid.UUID) (*models.AuditEntry, error) {
	return r.append(ctx, a.CaseID, actorID, models.AuditActionEvidence, map[string]any{
		"attachment_id": a.ID.String(),
		"filename":      a.Filename,
		"size":          a.Size,
	})
}

func (r *AuditRecorder) append(ctx context.Context, caseID, actorID uuid.UUID, action models.AuditAction, details map[string]any) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{
		CaseID:    caseID,
		UserID:    actorID,
		Action:    action,
		Details:   details,
		Timestamp: r.now(),
	}
	if err := r.audits.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("write %s audit entry: %w", action, err)
	}
	return entry, nil
}
