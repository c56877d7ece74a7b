package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Legacy weekly log entries look like "[STATUS] CASE <code>. <description>".
// Older sheets were written in Spanish, so "CASO" and the Spanish tags are
// accepted as well.
var (
	legacyEntryPattern = regexp.MustCompile(`(?i)^\[(OPEN|CLOSED|MONITORING|STANDBY|PENDING|ABIERTO|CERRADO|EN MONITOREO|PENDIENTE)\]\s*CAS[EO]\s*([^.]+)\.?\s*(.*)`)
	legacyTagPattern   = regexp.MustCompile(`(?i)\[(OPEN|CLOSED|MONITORING|STANDBY|ABIERTO|CERRADO|EN MONITOREO)\]`)
)

// Order matters: first match wins.
var legacyStatusTable = []struct {
	substr string
	status CaseStatus
}{
	{"CLOSED", CaseStatusClosed},
	{"CERRADO", CaseStatusClosed},
	{"MONITOR", CaseStatusMonitoring},
	{"STANDBY", CaseStatusStandby},
}

const (
	LegacyDefaultService     = "General"
	LegacyDefaultResponsible = "Unassigned"

	LegacyLabelInitial = "Initial Import"
	LegacyLabelWeekly  = "Weekly Update"
)

type LegacyEntry struct {
	Status      CaseStatus
	Code        string
	Description string
}

// Service derives the fallback service from the code's first token.
func (e LegacyEntry) Service() string {
	fields := strings.Fields(e.Code)
	if len(fields) > 1 {
		return fields[0]
	}
	return LegacyDefaultService
}

// ClassifyLegacyStatus maps loosely written tag text to a status.
func ClassifyLegacyStatus(tag string) CaseStatus {
	upper := strings.ToUpper(tag)
	for _, row := range legacyStatusTable {
		if strings.Contains(upper, row.substr) {
			return row.status
		}
	}
	return CaseStatusOpen
}

// SegmentLegacyBlock flattens a free-text cell and splits it so that every
// status tag starts a new line.
func SegmentLegacyBlock(block string) []string {
	flat := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(block)
	flat = legacyTagPattern.ReplaceAllString(strings.TrimSpace(flat), "\n$0")

	var lines []string
	for _, line := range strings.Split(flat, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseLegacyBlock extracts every well-formed entry of a block in order.
// Lines that do not follow the grammar are dropped.
func ParseLegacyBlock(block string) []LegacyEntry {
	var entries []LegacyEntry
	for _, line := range SegmentLegacyBlock(block) {
		m := legacyEntryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code := strings.TrimSpace(m[2])
		if code == "" {
			continue
		}
		entries = append(entries, LegacyEntry{
			Status:      ClassifyLegacyStatus(m[1]),
			Code:        code,
			Description: strings.TrimSpace(m[3]),
		})
	}
	return entries
}

// LegacyObservationContent renders the observation text for a legacy entry.
func LegacyObservationContent(label string, date time.Time, description string) string {
	return fmt.Sprintf("**[%s] %s:**\n%s", date.Format("2006-01-02"), label, description)
}
