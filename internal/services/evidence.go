package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EvidenceService records attachment metadata. The file itself is stored
// by the caller; StoragePath tells where.
type EvidenceService struct {
	cases       caseStore
	attachments attachmentStore
	recorder    *AuditRecorder
	tx          txRunner
	log         *zap.Logger
	now         func() time.Time
}

func NewEvidenceService(cases caseStore, attachments attachmentStore, recorder *AuditRecorder, tx txRunner, log *zap.Logger) *EvidenceService {
	return &EvidenceService{cases: cases, attachments: attachments, recorder: recorder, tx: tx, log: log, now: utcNow}
}

func (s *EvidenceService) Record(ctx context.Context, a *models.Attachment, actorID uuid.UUID) error {
	if strings.TrimSpace(a.Filename) == "" {
		return fmt.Errorf("%w: filename is required", models.ErrValidation)
	}
	if a.Size < 0 {
		return fmt.Errorf("%w: negative size", models.ErrValidation)
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = s.now()
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.cases.GetByID(ctx, a.CaseID); err != nil {
			return err
		}
		if err := s.attachments.Create(ctx, a); err != nil {
			return err
		}
		_, err := s.recorder.RecordEvidence(ctx, a, actorID)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info("evidence recorded",
		zap.String("case_id", a.CaseID.String()),
		zap.String("attachment_id", a.ID.String()),
		zap.Int64("size", a.Size),
	)
	return nil
}

func (s *EvidenceService) List(ctx context.Context, caseID uuid.UUID) ([]models.Attachment, error) {
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.attachments.ListByCase(ctx, caseID)
}
