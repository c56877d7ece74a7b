package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewCaseInput carries the fields of a case created by hand.
type NewCaseInput struct {
	Code        string
	Service     string
	Status      models.CaseStatus
	Priority    models.Priority
	Responsible *string
	Summary     string
	OpenedAt    *time.Time
	Notes       string
}

type CaseService struct {
	cases       caseStore
	attachments attachmentStore
	ledger      *ObservationLedger
	recorder    *AuditRecorder
	tx          txRunner
	log         *zap.Logger
	now         func() time.Time
}

func NewCaseService(
	cases caseStore,
	attachments attachmentStore,
	ledger *ObservationLedger,
	recorder *AuditRecorder,
	tx txRunner,
	log *zap.Logger,
) *CaseService {
	return &CaseService{
		cases:       cases,
		attachments: attachments,
		ledger:      ledger,
		recorder:    recorder,
		tx:          tx,
		log:         log,
		now:         utcNow,
	}
}

// Create stores a new case, its CREATE audit entry and, when notes are
// given, its first observation, all in one transaction.
func (s *CaseService) Create(ctx context.Context, in NewCaseInput, actorID uuid.UUID) (*models.Case, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", models.ErrValidation)
	}
	if strings.TrimSpace(in.Service) == "" {
		return nil, fmt.Errorf("%w: service is required", models.ErrValidation)
	}
	if in.Status == "" {
		in.Status = models.CaseStatusOpen
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	status, ok := models.ParseCaseStatus(string(in.Status))
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, in.Status)
	}
	priority, ok := models.ParsePriority(string(in.Priority))
	if !ok {
		return nil, fmt.Errorf("%w: unknown priority %q", models.ErrValidation, in.Priority)
	}

	now := s.now()
	author := actorID
	c := &models.Case{
		Code:        code,
		Service:     in.Service,
		Status:      status,
		Priority:    priority,
		Responsible: in.Responsible,
		Summary:     in.Summary,
		OpenedAt:    now,
		CreatedBy:   &author,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.OpenedAt != nil {
		c.OpenedAt = *in.OpenedAt
	}
	if c.Status == models.CaseStatusClosed {
		c.ClosedAt = &now
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.cases.GetByCode(ctx, code); err == nil {
			return fmt.Errorf("case %q: %w", code, models.ErrConflict)
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		if err := s.cases.Create(ctx, c); err != nil {
			return err
		}
		if _, err := s.recorder.RecordCreate(ctx, c, actorID); err != nil {
			return err
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			if _, err := s.ledger.Append(ctx, c.ID, notes, actorID, &now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("case created", zap.String("case_id", c.ID.String()), zap.String("code", c.Code))
	return c, nil
}

func (s *CaseService) Get(ctx context.Context, id uuid.UUID) (*models.CaseDetails, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	observations, err := s.ledger.ListByCase(ctx, id)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByCase(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CaseDetails{Case: *c, Observations: observations, Attachments: attachments}, nil
}

func (s *CaseService) List(ctx context.Context, f models.CaseFilter) ([]models.Case, error) {
	return s.cases.List(ctx, f)
}

// Update applies a partial update. Changed fields produce one UPDATE audit
// entry; notes become an observation. A notes-only update just touches
// updated_at.
func (s *CaseService) Update(ctx context.Context, id uuid.UUID, u models.CaseUpdate, actorID uuid.UUID) (*models.Case, error) {
	if u.Code != nil && strings.TrimSpace(*u.Code) == "" {
		return nil, fmt.Errorf("%w: code cannot be empty", models.ErrValidation)
	}

	var result *models.Case
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Code != nil && *u.Code != c.Code {
			if _, err := s.cases.GetByCode(ctx, *u.Code); err == nil {
				return fmt.Errorf("case %q: %w", *u.Code, models.ErrConflict)
			} else if !errors.Is(err, models.ErrNotFound) {
				return err
			}
		}

		var noted bool
		if u.Notes != nil && strings.TrimSpace(*u.Notes) != "" {
			if _, err := s.ledger.Append(ctx, c.ID, strings.TrimSpace(*u.Notes), actorID, nil); err != nil {
				return err
			}
			noted = true
		}

		entry, err := s.recorder.DiffAndRecord(ctx, c, u.Fields(), actorID, models.AuditActionUpdate)
		if err != nil {
			return err
		}
		if entry == nil && noted {
			c.UpdatedAt = s.now()
			if err := s.cases.Update(ctx, c); err != nil {
				return err
			}
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Comment appends a user observation and links it into the audit trail.
func (s *CaseService) Comment(ctx context.Context, caseID uuid.UUID, content string, actorID uuid.UUID) (*models.Observation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}

	var o *models.Observation
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.ledger.Append(ctx, caseID, content, actorID, nil)
		if err != nil {
			return err
		}
		_, err = s.recorder.RecordComment(ctx, o, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *CaseService) EditObservation(ctx context.Context, observationID uuid.UUID, content string, actor models.Actor) (*models.Observation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}
	return s.ledger.Edit(ctx, observationID, content, actor)
}
