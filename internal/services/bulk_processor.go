package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BulkAction string

const (
	BulkClose    BulkAction = "CLOSE"
	BulkAssign   BulkAction = "ASSIGN"
	BulkPriority BulkAction = "PRIORITY"
)

// BulkProcessor applies one action to many cases. Every case is handled on
// its own: a failing id is logged and skipped, the rest still commit.
type BulkProcessor struct {
	cases    caseStore
	recorder *AuditRecorder
	tx       txRunner
	log      *zap.Logger
}

func NewBulkProcessor(cases caseStore, recorder *AuditRecorder, tx txRunner, log *zap.Logger) *BulkProcessor {
	return &BulkProcessor{cases: cases, recorder: recorder, tx: tx, log: log}
}

// Apply returns how many cases actually changed. Unknown ids and cases
// already in the target state are not counted. A PRIORITY value that is
// not a priority changes nothing and is not reported as an error.
func (p *BulkProcessor) Apply(ctx context.Context, caseIDs []uuid.UUID, action BulkAction, value string, actorID uuid.UUID) (int, error) {
	var field models.FieldValue
	switch action {
	case BulkClose:
		field = models.FieldValue{Name: models.FieldStatus, Value: models.CaseStatusClosed}
	case BulkAssign:
		field = models.FieldValue{Name: models.FieldResponsible, Value: value}
	case BulkPriority:
		prio, ok := models.ParsePriority(value)
		if !ok {
			p.log.Debug("bulk priority value ignored", zap.String("value", value), zap.Int("cases", len(caseIDs)))
			return 0, nil
		}
		field = models.FieldValue{Name: models.FieldPriority, Value: prio}
	default:
		return 0, fmt.Errorf("%w: unknown bulk action %q", models.ErrValidation, action)
	}

	changed := 0
	for _, id := range caseIDs {
		ok, err := p.applyOne(ctx, id, field, actorID)
		if err != nil {
			p.log.Warn("bulk update item failed",
				zap.String("case_id", id.String()),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func (p *BulkProcessor) applyOne(ctx context.Context, id uuid.UUID, field models.FieldValue, actorID uuid.UUID) (bool, error) {
	var changed bool
	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := p.cases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		entry, err := p.recorder.DiffAndRecord(ctx, c, []models.FieldValue{field}, actorID, models.AuditActionBulkUpdate)
		if err != nil {
			return err
		}
		changed = entry != nil
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	return changed, err
}
