package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Column names of the tabular case and observation files.
const (
	ColCode            = "code"
	ColService         = "service"
	ColStatus          = "status"
	ColPriority        = "priority"
	ColResponsible     = "responsible"
	ColNotes           = "notes"
	ColObservationText = "observation_text"
	ColOpenedAt        = "opened_at"
	ColClosedAt        = "closed_at"
	ColCreatedAt       = "created_at"
	ColUpdatedAt       = "updated_at"

	ColCaseCode = "case_code"
	ColContent  = "content"
)

var (
	requiredCaseColumns        = []string{ColCode, ColService, ColStatus, ColPriority}
	requiredObservationColumns = []string{ColCaseCode, ColContent, ColCreatedAt}
)

// CaseIndex maps codes to the ids of cases touched by the current import,
// so the observation pass finds rows created moments ago without a lookup.
type CaseIndex map[string]uuid.UUID

type CaseImportResult struct {
	Created             int       `json:"created"`
	Updated             int       `json:"updated"`
	ObservationsCreated int       `json:"observations_created"`
	Errors              []string  `json:"errors"`
	Index               CaseIndex `json:"-"`
}

type ObservationImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

type ImportResult struct {
	Cases        *CaseImportResult        `json:"cases"`
	Observations *ObservationImportResult `json:"observations,omitempty"`
}

// TabularImporter upserts cases and observations from structured sheets.
// Each row commits on its own; a bad row is reported and skipped, and a
// failure in the observation pass leaves the case pass committed.
type TabularImporter struct {
	cases   caseStore
	ledger  *ObservationLedger
	tx      txRunner
	maxRows int
	log     *zap.Logger
	now     func() time.Time
}

func NewTabularImporter(cases caseStore, ledger *ObservationLedger, tx txRunner, maxRows int, log *zap.Logger) *TabularImporter {
	return &TabularImporter{cases: cases, ledger: ledger, tx: tx, maxRows: maxRows, log: log, now: utcNow}
}

// Import runs the case pass and, if observations is non-nil, the
// observation pass. Both headers are checked before any row is written.
func (s *TabularImporter) Import(ctx context.Context, cases, observations *tabular.Sheet, actorID uuid.UUID) (*ImportResult, error) {
	if err := s.checkSheet("cases", cases, requiredCaseColumns); err != nil {
		return nil, err
	}
	if observations != nil {
		if err := s.checkSheet("observations", observations, requiredObservationColumns); err != nil {
			return nil, err
		}
	}

	caseRes, err := s.ImportCases(ctx, cases, actorID)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Cases: caseRes}
	if observations == nil {
		return res, nil
	}

	obsRes, err := s.ImportObservations(ctx, observations, caseRes.Index, actorID)
	if err != nil {
		return res, err
	}
	res.Observations = obsRes
	return res, nil
}

func (s *TabularImporter) ImportCases(ctx context.Context, sheet *tabular.Sheet, actorID uuid.UUID) (*CaseImportResult, error) {
	if err := s.checkSheet("cases", sheet, requiredCaseColumns); err != nil {
		return nil, err
	}

	res := &CaseImportResult{Errors: []string{}, Index: CaseIndex{}}
	for _, row := range sheet.Rows {
		if err := s.importCaseRow(ctx, row, actorID, res); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", row.Number, err))
			s.log.Warn("case row rejected", zap.Int("row", row.Number), zap.Error(err))
		}
	}

	s.log.Info("case import finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (s *TabularImporter) importCaseRow(ctx context.Context, row tabular.Row, actorID uuid.UUID, res *CaseImportResult) error {
	code := strings.TrimSpace(row.Get(ColCode))
	if code == "" {
		return errors.New("code is empty")
	}

	status := models.ParseCaseStatusOr(row.Get(ColStatus), models.CaseStatusOpen)
	if status.FellBack {
		s.log.Debug("status defaulted", zap.Int("row", row.Number), zap.String("raw", status.Raw))
	}
	priority := models.ParsePriorityOr(row.Get(ColPriority), models.PriorityMedium)
	if priority.FellBack {
		s.log.Debug("priority defaulted", zap.Int("row", row.Number), zap.String("raw", priority.Raw))
	}

	now := s.now()
	openedAt := tabular.ParseTimeOr(row.Get(ColOpenedAt), now)
	createdAt := tabular.ParseTimeOr(row.Get(ColCreatedAt), openedAt)
	updatedAt := tabular.ParseTimeOr(row.Get(ColUpdatedAt), now)
	var closedAt *time.Time
	if t, ok := tabular.ParseTime(row.Get(ColClosedAt)); ok {
		closedAt = &t
	}
	var responsible *string
	if v := strings.TrimSpace(row.Get(ColResponsible)); v != "" {
		responsible = &v
	}
	noteText := strings.TrimSpace(row.Get(ColObservationText))

	var (
		caseID  uuid.UUID
		created bool
		noted   bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByCode(ctx, code)
		switch {
		case err == nil:
			c.Service = row.Get(ColService)
			c.Status = status.Value
			c.Priority = priority.Value
			c.Responsible = responsible
			c.Summary = row.Get(ColNotes)
			c.OpenedAt = openedAt
			c.ClosedAt = closedAt
			c.UpdatedAt = updatedAt
			if err := s.cases.Update(ctx, c); err != nil {
				return err
			}
		case errors.Is(err, models.ErrNotFound):
			author := actorID
			c = &models.Case{
				Code:        code,
				Service:     row.Get(ColService),
				Status:      status.Value,
				Priority:    priority.Value,
				Responsible: responsible,
				Summary:     row.Get(ColNotes),
				OpenedAt:    openedAt,
				ClosedAt:    closedAt,
				CreatedBy:   &author,
				CreatedAt:   createdAt,
				UpdatedAt:   updatedAt,
			}
			if err := s.cases.Create(ctx, c); err != nil {
				return err
			}
			created = true
		default:
			return err
		}
		caseID = c.ID

		if noteText != "" {
			noted, err = s.ledger.AppendIfAbsent(ctx, c.ID, noteText, actorID, &updatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	res.Index[code] = caseID
	if created {
		res.Created++
	} else {
		res.Updated++
	}
	if noted {
		res.ObservationsCreated++
	}
	return nil
}

// ImportObservations appends observation rows, resolving case codes via
// index first and the store second. Rows whose content the case already
// holds are skipped, which makes re-imports idempotent.
func (s *TabularImporter) ImportObservations(ctx context.Context, sheet *tabular.Sheet, index CaseIndex, actorID uuid.UUID) (*ObservationImportResult, error) {
	if err := s.checkSheet("observations", sheet, requiredObservationColumns); err != nil {
		return nil, err
	}

	res := &ObservationImportResult{Errors: []string{}}
	for _, row := range sheet.Rows {
		created, err := s.importObservationRow(ctx, row, index, actorID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", row.Number, err))
			s.log.Warn("observation row rejected", zap.Int("row", row.Number), zap.Error(err))
			continue
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}

	s.log.Info("observation import finished",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (s *TabularImporter) importObservationRow(ctx context.Context, row tabular.Row, index CaseIndex, actorID uuid.UUID) (bool, error) {
	code := strings.TrimSpace(row.Get(ColCaseCode))
	content := row.Get(ColContent)
	if strings.TrimSpace(content) == "" {
		return false, errors.New("content is empty")
	}

	caseID, ok := index[code]
	if !ok {
		c, err := s.cases.GetByCode(ctx, code)
		if errors.Is(err, models.ErrNotFound) {
			return false, fmt.Errorf("case %q not found", code)
		}
		if err != nil {
			return false, err
		}
		caseID = c.ID
	}

	at := tabular.ParseTimeOr(row.Get(ColCreatedAt), s.now())
	return s.ledger.AppendIfAbsent(ctx, caseID, content, actorID, &at)
}

func (s *TabularImporter) checkSheet(source string, sheet *tabular.Sheet, required []string) error {
	if sheet == nil {
		return fmt.Errorf("%w: %s sheet is missing", models.ErrValidation, source)
	}
	if missing := sheet.Missing(required...); len(missing) > 0 {
		return &models.SchemaError{Source: source, Missing: missing}
	}
	if s.maxRows > 0 && len(sheet.Rows) > s.maxRows {
		return fmt.Errorf("%w: %s sheet has %d rows, limit is %d", models.ErrValidation, source, len(sheet.Rows), s.maxRows)
	}
	return nil
}
