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

// LegacyColumns are the 0-based positions of the cells a weekly log row is
// read from.
type LegacyColumns struct {
	Date        int
	Responsible int
	Content     int
}

var DefaultLegacyColumns = LegacyColumns{Date: 1, Responsible: 4, Content: 25}

func (c LegacyColumns) width() int {
	return max(c.Date, c.Responsible, c.Content) + 1
}

type LegacyImportResult struct {
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	SkippedRows []string `json:"skipped_rows"`
	Errors      []string `json:"errors"`
}

// legacyBatch holds the cases seen so far in one import call, keyed by code.
type legacyBatch map[string]*models.Case

// LegacyImporter rebuilds case history from the free-text weekly log sheet.
type LegacyImporter struct {
	cases   caseStore
	ledger  *ObservationLedger
	tx      txRunner
	columns LegacyColumns
	log     *zap.Logger
}

func NewLegacyImporter(cases caseStore, ledger *ObservationLedger, tx txRunner, columns LegacyColumns, log *zap.Logger) *LegacyImporter {
	return &LegacyImporter{cases: cases, ledger: ledger, tx: tx, columns: columns, log: log}
}

// Import walks the rows in order. Every parsed entry commits on its own.
func (s *LegacyImporter) Import(ctx context.Context, sheet *tabular.Sheet, actorID uuid.UUID) (*LegacyImportResult, error) {
	if sheet == nil {
		return nil, fmt.Errorf("%w: legacy sheet is missing", models.ErrValidation)
	}

	res := &LegacyImportResult{SkippedRows: []string{}, Errors: []string{}}
	batch := legacyBatch{}
	width := s.columns.width()

	for _, row := range sheet.Rows {
		if len(row.Cells) < width {
			s.skip(res, row, fmt.Sprintf("has %d columns, need %d", len(row.Cells), width))
			continue
		}
		dateCell, _ := row.At(s.columns.Date)
		date, ok := tabular.ParseTime(dateCell)
		if !ok {
			s.skip(res, row, fmt.Sprintf("invalid date %q", dateCell))
			continue
		}
		block, _ := row.At(s.columns.Content)
		if strings.TrimSpace(block) == "" || strings.EqualFold(strings.TrimSpace(block), "nan") {
			s.skip(res, row, "empty content")
			continue
		}
		respCell, _ := row.At(s.columns.Responsible)
		responsible := legacyResponsible(respCell)

		for _, entry := range models.ParseLegacyBlock(block) {
			created, err := s.applyEntry(ctx, batch, entry, date, responsible, actorID)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: case %s: %v", row.Number, entry.Code, err))
				s.log.Warn("legacy entry rejected",
					zap.Int("row", row.Number),
					zap.String("code", entry.Code),
					zap.Error(err),
				)
				continue
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}
	}

	s.log.Info("legacy import finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", len(res.SkippedRows)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// applyEntry resolves the entry's case from the batch, then the store, and
// creates it when neither knows the code. The batch only learns about the
// case once the transaction has committed.
func (s *LegacyImporter) applyEntry(ctx context.Context, batch legacyBatch, entry models.LegacyEntry, date time.Time, responsible string, actorID uuid.UUID) (bool, error) {
	var (
		result  *models.Case
		created bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.resolve(ctx, batch, entry.Code)
		if err != nil {
			return err
		}

		if current == nil {
			c, err := s.create(ctx, entry, date, responsible, actorID)
			if err != nil {
				return err
			}
			result, created = c, true
			return nil
		}

		c := *current
		c.Responsible = &responsible
		c.Status = entry.Status
		c.UpdatedAt = date
		if err := s.cases.Update(ctx, &c); err != nil {
			return err
		}
		content := models.LegacyObservationContent(models.LegacyLabelWeekly, date, entry.Description)
		if _, err := s.ledger.Append(ctx, c.ID, content, actorID, &date); err != nil {
			return err
		}
		result = &c
		return nil
	})
	if err != nil {
		return false, err
	}

	batch[entry.Code] = result
	return created, nil
}

func (s *LegacyImporter) resolve(ctx context.Context, batch legacyBatch, code string) (*models.Case, error) {
	if c, ok := batch[code]; ok {
		return c, nil
	}
	c, err := s.cases.GetByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *LegacyImporter) create(ctx context.Context, entry models.LegacyEntry, date time.Time, responsible string, actorID uuid.UUID) (*models.Case, error) {
	author := actorID
	c := &models.Case{
		Code:        entry.Code,
		Status:      entry.Status,
		Priority:    models.PriorityMedium,
		Service:     entry.Service(),
		Responsible: &responsible,
		OpenedAt:    date,
		CreatedBy:   &author,
		CreatedAt:   date,
		UpdatedAt:   date,
	}
	if entry.Status == models.CaseStatusClosed {
		c.ClosedAt = &date
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}
	content := models.LegacyObservationContent(models.LegacyLabelInitial, date, entry.Description)
	if _, err := s.ledger.Append(ctx, c.ID, content, actorID, &date); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *LegacyImporter) skip(res *LegacyImportResult, row tabular.Row, reason string) {
	res.SkippedRows = append(res.SkippedRows, fmt.Sprintf("row %d: %s", row.Number, reason))
	s.log.Debug("legacy row skipped", zap.Int("row", row.Number), zap.String("reason", reason))
}

func legacyResponsible(cell string) string {
	v := strings.TrimSpace(cell)
	if v == "" || strings.EqualFold(v, "nan") {
		return models.LegacyDefaultResponsible
	}
	return v
}
