package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
	ExportTSV  ExportFormat = "tsv"
)

// ParseExportFormat defaults to XLSX for an empty string.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", ExportXLSX:
		return ExportXLSX, nil
	case ExportCSV, ExportTSV:
		return ExportFormat(s), nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", models.ErrValidation, s)
}

func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportTSV:
		return "text/tab-separated-values"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

const (
	CasesSheet        = "Cases"
	ObservationsSheet = "Observations"
)

// Column order of exported sheets. The case columns are the ones the
// tabular importer reads, so an export can be imported back.
var (
	caseExportHeader        = []string{ColCode, ColService, ColStatus, ColPriority, ColResponsible, ColNotes, ColOpenedAt, ColClosedAt, ColCreatedAt, ColUpdatedAt}
	observationExportHeader = []string{ColCaseCode, "number", ColContent, ColCreatedAt, "edited_at"}
)

// Snapshot is the exported state of every case.
type Snapshot struct {
	Cases        tabular.Table
	Observations tabular.Table
}

type ExportService struct {
	cases        caseStore
	observations observationStore
	log          *zap.Logger
}

func NewExportService(cases caseStore, observations observationStore, log *zap.Logger) *ExportService {
	return &ExportService{cases: cases, observations: observations, log: log}
}

// Snapshot builds both sheets. Cases are ordered by code; observations are
// numbered from 1 within each case in creation order.
func (s *ExportService) Snapshot(ctx context.Context) (*Snapshot, error) {
	cases, err := s.cases.List(ctx, models.CaseFilter{})
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Code < cases[j].Code })

	observations, err := s.observations.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}

	snap := &Snapshot{
		Cases:        tabular.Table{Name: CasesSheet, Header: caseExportHeader},
		Observations: tabular.Table{Name: ObservationsSheet, Header: observationExportHeader},
	}

	codes := make(map[uuid.UUID]string, len(cases))
	for _, c := range cases {
		codes[c.ID] = c.Code
		snap.Cases.Rows = append(snap.Cases.Rows, []string{
			c.Code,
			c.Service,
			string(c.Status),
			string(c.Priority),
			derefString(c.Responsible),
			c.Summary,
			formatTime(&c.OpenedAt),
			formatTime(c.ClosedAt),
			formatTime(&c.CreatedAt),
			formatTime(&c.UpdatedAt),
		})
	}

	byCase := map[uuid.UUID][]models.Observation{}
	for _, o := range observations {
		byCase[o.CaseID] = append(byCase[o.CaseID], o)
	}
	for _, c := range cases {
		obs := byCase[c.ID]
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].CreatedAt.Before(obs[j].CreatedAt) })
		for n, o := range obs {
			snap.Observations.Rows = append(snap.Observations.Rows, []string{
				codes[c.ID],
				strconv.Itoa(n + 1),
				o.Content,
				formatTime(&o.CreatedAt),
				formatTime(o.EditedAt),
			})
		}
	}

	s.log.Debug("export snapshot built",
		zap.Int("cases", len(snap.Cases.Rows)),
		zap.Int("observations", len(snap.Observations.Rows)),
	)
	return snap, nil
}

// Write renders the snapshot. XLSX holds both sheets; the delimited formats
// hold one, picked by sheet ("cases" or "observations").
func (s *ExportService) Write(ctx context.Context, w io.Writer, format ExportFormat, sheet string) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	if format == ExportXLSX {
		return tabular.WriteXLSX(w, snap.Cases, snap.Observations)
	}

	table := snap.Cases
	switch sheet {
	case "", "cases":
	case "observations":
		table = snap.Observations
	default:
		return fmt.Errorf("%w: unknown sheet %q", models.ErrValidation, sheet)
	}

	comma := ','
	if format == ExportTSV {
		comma = '\t'
	}
	return tabular.WriteDelimited(w, comma, table.Header, table.Rows)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
