package repositories

import (
	"context"
	"fmt"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

type AttachmentRepo struct {
	db DB
}

func NewAttachmentRepo(db DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

func (r *AttachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	err := querierFrom(ctx, r.db).QueryRow(ctx, `
		INSERT INTO attachments (case_id, filename, content_type, size, storage_path, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.CaseID, a.Filename, a.ContentType, a.Size, a.StoragePath, a.UploadedAt).Scan(&a.ID)
	return mapError(err, "attachment for case", a.CaseID.String())
}

func (r *AttachmentRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Attachment, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT id, case_id, filename, content_type, size, storage_path, uploaded_at
		FROM attachments WHERE case_id = $1
		ORDER BY uploaded_at
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.CaseID, &a.Filename, &a.ContentType, &a.Size, &a.StoragePath, &a.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
