package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

type ObservationRepo struct {
	db DB
}

func NewObservationRepo(db DB) *ObservationRepo {
	return &ObservationRepo{db: db}
}

func (r *ObservationRepo) Create(ctx context.Context, o *models.Observation) error {
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		INSERT INTO observations (case_id, content, created_at, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, o.CaseID, o.Content, o.CreatedAt, o.CreatedBy).Scan(&o.ID)
	return mapError(err, "observation for case", o.CaseID.String())
}

func (r *ObservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Observation, error) {
	var o models.Observation
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, case_id, content, created_at, edited_at, created_by
		FROM observations WHERE id = $1
	`, id).Scan(&o.ID, &o.CaseID, &o.Content, &o.CreatedAt, &o.EditedAt, &o.CreatedBy)
	if err != nil {
		return nil, mapError(err, "observation", id.String())
	}
	return &o, nil
}

// UpdateContent rewrites content and edited_at only. case_id, created_at
// and created_by are never part of an update.
func (r *ObservationRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	tag, err := querierFrom(ctx, r.db).Exec(ctx,
		`UPDATE observations SET content = $1, edited_at = $2 WHERE id = $3`, content, editedAt, id)
	if err != nil {
		return mapError(err, "observation", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("observation %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ExistsWithContent reports whether the case already has an observation
// with exactly this content.
func (r *ObservationRepo) ExistsWithContent(ctx context.Context, caseID uuid.UUID, content string) (bool, error) {
	var exists bool
	err := querierFrom(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM observations WHERE case_id = $1 AND content = $2)`,
		caseID, content).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check observation content: %w", err)
	}
	return exists, nil
}

func (r *ObservationRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Observation, error) {
	return r.list(ctx, `WHERE case_id = $1 ORDER BY created_at, id`, caseID)
}

// All returns every observation, grouped by case, for exports.
func (r *ObservationRepo) All(ctx context.Context) ([]models.Observation, error) {
	return r.list(ctx, `ORDER BY case_id, created_at, id`)
}

func (r *ObservationRepo) list(ctx context.Context, tail string, args ...any) ([]models.Observation, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT id, case_id, content, created_at, edited_at, created_by
		FROM observations `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.CaseID, &o.Content, &o.CreatedAt, &o.EditedAt, &o.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
