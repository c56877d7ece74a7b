package models

import (
	"time"

	"github.com/google/uuid"
)

type TimelineKind string

const (
	TimelineObservation TimelineKind = "OBSERVATION"
	TimelineAudit       TimelineKind = "AUDIT"
)

// TimelineEntry is the common projection of observations and audit entries.
type TimelineEntry struct {
	Kind      TimelineKind   `json:"type"`
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"created_at"`
	ActorID   *uuid.UUID     `json:"user_id,omitempty"`
	ActorName string         `json:"user_name"`
	Content   string         `json:"content,omitempty"`
	EditedAt  *time.Time     `json:"edited_at,omitempty"`
	Action    AuditAction    `json:"action,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
