package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

// Case statuses
const (
	CaseStatusOpen       CaseStatus = "OPEN"
	CaseStatusStandby    CaseStatus = "STANDBY"
	CaseStatusMonitoring CaseStatus = "MONITORING"
	CaseStatusClosed     CaseStatus = "CLOSED"
)

var AllCaseStatuses = []CaseStatus{CaseStatusOpen, CaseStatusStandby, CaseStatusMonitoring, CaseStatusClosed}

type Priority string

// Priorities, highest first
const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

var AllPriorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// ParseCaseStatus matches s case-insensitively against the member names.
// A "CaseStatus." prefix, as written by older exports, is tolerated.
func ParseCaseStatus(s string) (CaseStatus, bool) {
	s = normalizeEnumText(s, "CASESTATUS.")
	for _, st := range AllCaseStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ParsePriority matches s case-insensitively against the member names.
func ParsePriority(s string) (Priority, bool) {
	s = normalizeEnumText(s, "PRIORITY.")
	for _, p := range AllPriorities {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

func normalizeEnumText(s, prefix string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.TrimPrefix(s, prefix)
}

// Parsed is the outcome of a parse-with-default: either the parsed value or
// the fallback, with FellBack telling the caller which one it got.
type Parsed[T any] struct {
	Value    T
	FellBack bool
	Raw      string
}

func ParseCaseStatusOr(s string, fallback CaseStatus) Parsed[CaseStatus] {
	if st, ok := ParseCaseStatus(s); ok {
		return Parsed[CaseStatus]{Value: st, Raw: s}
	}
	return Parsed[CaseStatus]{Value: fallback, FellBack: true, Raw: s}
}

func ParsePriorityOr(s string, fallback Priority) Parsed[Priority] {
	if p, ok := ParsePriority(s); ok {
		return Parsed[Priority]{Value: p, Raw: s}
	}
	return Parsed[Priority]{Value: fallback, FellBack: true, Raw: s}
}

type Case struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Status      CaseStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Service     string     `json:"service"`
	Responsible *string    `json:"responsible,omitempty"`
	Summary     string     `json:"summary"`
	OpenedAt    time.Time  `json:"opened_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CaseDetails is a case together with its ledger and evidence.
type CaseDetails struct {
	Case
	Observations []Observation `json:"observations"`
	Attachments  []Attachment  `json:"attachments"`
}

// CaseFilter narrows case listings. Zero values mean "no constraint".
type CaseFilter struct {
	Status      *CaseStatus
	Priority    *Priority
	Service     string
	Responsible string
	Search      string
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time
	Limit       int
	Offset      int
}
