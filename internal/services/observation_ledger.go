package services

import (
	"context"
	"fmt"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/rbac"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObservationLedger keeps the per-case notes. Notes are appended and may be
// edited in place, but never removed.
type ObservationLedger struct {
	cases        caseStore
	observations observationStore
	log          *zap.Logger
	now          func() time.Time
}

func NewObservationLedger(cases caseStore, observations observationStore, log *zap.Logger) *ObservationLedger {
	return &ObservationLedger{cases: cases, observations: observations, log: log, now: utcNow}
}

// Append adds a note to the case. A nil at means "now".
func (l *ObservationLedger) Append(ctx context.Context, caseID uuid.UUID, content string, actorID uuid.UUID, at *time.Time) (*models.Observation, error) {
	if _, err := l.cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return l.insert(ctx, caseID, content, actorID, at)
}

// AppendIfAbsent appends unless the case already holds an observation with
// identical content. It reports whether a new observation was written.
func (l *ObservationLedger) AppendIfAbsent(ctx context.Context, caseID uuid.UUID, content string, actorID uuid.UUID, at *time.Time) (bool, error) {
	exists, err := l.observations.ExistsWithContent(ctx, caseID, content)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := l.Append(ctx, caseID, content, actorID, at); err != nil {
		return false, err
	}
	return true, nil
}

// Edit replaces the content of an observation. Editors and admins may edit
// any observation, everybody else only their own.
func (l *ObservationLedger) Edit(ctx context.Context, observationID uuid.UUID, content string, actor models.Actor) (*models.Observation, error) {
	o, err := l.observations.GetByID(ctx, observationID)
	if err != nil {
		return nil, err
	}

	isAuthor := o.CreatedBy != nil && *o.CreatedBy == actor.UserID
	if !isAuthor && !rbac.HasPermission(actor.Role, rbac.PermEditAnyObservation) {
		return nil, fmt.Errorf("edit observation %s: %w", observationID, models.ErrForbidden)
	}

	editedAt := l.now()
	if err := l.observations.UpdateContent(ctx, o.ID, content, editedAt); err != nil {
		return nil, err
	}
	o.Content = content
	o.EditedAt = &editedAt
	return o, nil
}

func (l *ObservationLedger) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Observation, error) {
	return l.observations.ListByCase(ctx, caseID)
}

func (l *ObservationLedger) insert(ctx context.Context, caseID uuid.UUID, content string, actorID uuid.UUID, at *time.Time) (*models.Observation, error) {
	createdAt := l.now()
	if at != nil {
		createdAt = *at
	}
	author := actorID
	o := &models.Observation{
		CaseID:    caseID,
		Content:   content,
		CreatedAt: createdAt,
		CreatedBy: &author,
	}
	if err := l.observations.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
