package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
)

// AuditRepo is append-only: there is no update or delete.
type AuditRepo struct {
	db DB
}

func NewAuditRepo(db DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Create(ctx context.Context, entry *models.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	err = querierFrom(ctx, r.db).QueryRow(ctx, `
		INSERT INTO case_audit (case_id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, entry.CaseID, entry.UserID, string(entry.Action), details, entry.Timestamp).Scan(&entry.ID)
	return mapError(err, "audit for case", entry.CaseID.String())
}

// ListByCase returns the trail of one case, oldest first.
func (r *AuditRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.AuditEntry, error) {
	rows, err := querierFrom(ctx, r.db).Query(ctx, `
		SELECT id, case_id, user_id, action, details, created_at
		FROM case_audit WHERE case_id = $1
		ORDER BY created_at, id
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var (
			e       models.AuditEntry
			action  string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.CaseID, &e.UserID, &action, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = models.AuditAction(action)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("audit entry %s unmarshal details: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
