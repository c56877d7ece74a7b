package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

// Audit actions
const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionComment    AuditAction = "COMMENT"
	AuditActionBulkUpdate AuditAction = "BULK_UPDATE"
	AuditActionEvidence   AuditAction = "EVIDENCE"
)

// FieldChange is one old/new pair of a field diff. Values are canonical:
// strings for enums and text, RFC 3339 strings for times, nil for null.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry is append-only; nothing updates or deletes it once written.
type AuditEntry struct {
	ID        uuid.UUID      `json:"id"`
	CaseID    uuid.UUID      `json:"case_id"`
	UserID    uuid.UUID      `json:"user_id"`
	Action    AuditAction    `json:"action"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChangesDetails converts a field diff into the JSON details payload.
func ChangesDetails(changes map[string]FieldChange) map[string]any {
	details := make(map[string]any, len(changes))
	for field, ch := range changes {
		details[field] = map[string]any{"old": ch.Old, "new": ch.New}
	}
	return details
}
