package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedExportData(t *testing.T, env *testEnv) {
	t.Helper()
	b := env.seedCase("B-2", func(c *models.Case) { c.Responsible = strPtr("Ana") })
	a := env.seedCase("A-1")
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	later := at.Add(time.Hour)
	actor := uuid.New()

	_, err := env.ledger.Append(context.Background(), a.ID, "second", actor, &later)
	require.NoError(t, err)
	_, err = env.ledger.Append(context.Background(), a.ID, "first", actor, &at)
	require.NoError(t, err)
	_, err = env.ledger.Append(context.Background(), b.ID, "only", actor, &at)
	require.NoError(t, err)
}

func TestExportSnapshot(t *testing.T) {
	env := newTestEnv()
	seedExportData(t, env)

	snap, err := NewExportService(env.cases, env.observations, zap.NewNop()).Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Cases.Rows, 2)
	assert.Equal(t, "A-1", snap.Cases.Rows[0][0])
	assert.Equal(t, "B-2", snap.Cases.Rows[1][0])
	assert.Equal(t, "Ana", snap.Cases.Rows[1][4])
	assert.Equal(t, "", snap.Cases.Rows[0][7], "closed_at is blank for open cases")

	require.Len(t, snap.Observations.Rows, 3)
	assert.Equal(t, []string{"A-1", "1", "first"}, snap.Observations.Rows[0][:3])
	assert.Equal(t, []string{"A-1", "2", "second"}, snap.Observations.Rows[1][:3])
	assert.Equal(t, []string{"B-2", "1", "only"}, snap.Observations.Rows[2][:3])
}

func TestExportWrite_CSVRoundTripsThroughImporter(t *testing.T) {
	env := newTestEnv()
	seedExportData(t, env)
	svc := NewExportService(env.cases, env.observations, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, svc.Write(context.Background(), &buf, ExportCSV, "cases"))

	sheet, err := tabular.ReadDelimited(&buf, ',', true)
	require.NoError(t, err)
	assert.Empty(t, sheet.Missing(requiredCaseColumns...))

	fresh := newTestEnv()
	res, err := newTestImporter(fresh).ImportCases(context.Background(), sheet, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Errors)
	assert.Equal(t, env.cases.mustGetByCode("B-2").OpenedAt, fresh.cases.mustGetByCode("B-2").OpenedAt)
}

func TestExportWrite_XLSXHasBothSheets(t *testing.T) {
	env := newTestEnv()
	seedExportData(t, env)
	svc := NewExportService(env.cases, env.observations, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, svc.Write(context.Background(), &buf, ExportXLSX, ""))

	sheet, err := tabular.ReadXLSX(bytes.NewReader(buf.Bytes()), tabular.FirstSheet, true)
	require.NoError(t, err)
	assert.Equal(t, CasesSheet, sheet.Name)
	assert.Len(t, sheet.Rows, 2)

	obs, err := tabular.ReadXLSX(bytes.NewReader(buf.Bytes()), func(names []string) string {
		return ObservationsSheet
	}, true)
	require.NoError(t, err)
	assert.Len(t, obs.Rows, 3)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportXLSX, f)

	f, err = ParseExportFormat("tsv")
	require.NoError(t, err)
	assert.Equal(t, ExportTSV, f)

	_, err = ParseExportFormat("pdf")
	require.ErrorIs(t, err, models.ErrValidation)
}
