package services

import (
	"context"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

// Consumer-side views of the repositories. The pgx implementations live in
// internal/repositories; tests use in-memory fakes.

type caseStore interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	GetByCode(ctx context.Context, code string) (*models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	List(ctx context.Context, f models.CaseFilter) ([]models.Case, error)
}

type observationStore interface {
	Create(ctx context.Context, o *models.Observation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Observation, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	ExistsWithContent(ctx context.Context, caseID uuid.UUID, content string) (bool, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Observation, error)
	All(ctx context.Context) ([]models.Observation, error)
}

type auditStore interface {
	Create(ctx context.Context, e *models.AuditEntry) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.AuditEntry, error)
}

type attachmentStore interface {
	Create(ctx context.Context, a *models.Attachment) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Attachment, error)
}

type userDirectory interface {
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

func utcNow() time.Time {
	return time.Now().UTC()
}
