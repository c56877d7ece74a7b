package services

import (
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

func newTestImporter(env *testEnv) *TabularImporter {
	return NewTabularImporter(env.cases, env.ledger, env.tx, 0, zap.NewNop())
}

func caseSheet(rows ...[]string) *tabular.Sheet {
	header := []string{"Code", "Service", "Status", "Priority", "Responsible", "Notes", "Observation_Text", "Opened_At"}
	return tabular.NewSheet("cases", append([][]string{header}, rows...), true)
}

func TestImportCases_CreatesAndUpdates(t *testing.T) {
	env := newTestEnv()
	env.seedCase("T-1", func(c *models.Case) { c.Service = "Old" })
	actor := uuid.New()

	res, err := newTestImporter(env).ImportCases(context.Background(), caseSheet(
		[]string{"T-1", "Network", "closed", "HIGH", "Ana", "summary", "", "2024-02-01"},
		[]string{"T-2", "Billing", "weird", "", "", "", "first note", "01/03/2024"},
	), actor)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.ObservationsCreated)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Index, "T-1")
	assert.Contains(t, res.Index, "T-2")

	t1 := env.cases.mustGetByCode("T-1")
	assert.Equal(t, "Network", t1.Service)
	assert.Equal(t, models.CaseStatusClosed, t1.Status)
	assert.Equal(t, models.PriorityHigh, t1.Priority)
	require.NotNil(t, t1.Responsible)
	assert.Equal(t, "Ana", *t1.Responsible)
	assert.Equal(t, "summary", t1.Summary)

	t2 := env.cases.mustGetByCode("T-2")
	assert.Equal(t, models.CaseStatusOpen, t2.Status)
	assert.Equal(t, models.PriorityMedium, t2.Priority)
	assert.Nil(t, t2.Responsible)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), t2.OpenedAt)
	require.NotNil(t, t2.CreatedBy)
	assert.Equal(t, actor, *t2.CreatedBy)

	assert.Empty(t, env.audits.entries, "imports do not write audit entries")
}

func TestImportCases_MissingColumnAbortsBeforeAnyRow(t *testing.T) {
	env := newTestEnv()
	sheet := tabular.NewSheet("cases", [][]string{
		{"code", "service", "status"},
		{"T-3", "Network", "OPEN"},
	}, true)

	_, err := newTestImporter(env).ImportCases(context.Background(), sheet, uuid.New())

	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"priority"}, schemaErr.Missing)
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, env.cases.count())
}

func TestImportCases_BadRowIsReportedAndSkipped(t *testing.T) {
	env := newTestEnv()
	env.cases.fail["T-5"] = errStoreDown

	res, err := newTestImporter(env).ImportCases(context.Background(), caseSheet(
		[]string{"", "Network", "OPEN", "LOW"},
		[]string{"T-5", "Network", "OPEN", "LOW"},
		[]string{"T-6", "Network", "OPEN", "LOW"},
	), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "row 2:")
	assert.Contains(t, res.Errors[1], "row 3:")
	assert.NotContains(t, res.Index, "T-5")
}

func TestImport_TwiceAddsNoObservations(t *testing.T) {
	env := newTestEnv()
	imp := newTestImporter(env)
	cases := caseSheet([]string{"T-7", "Network", "OPEN", "LOW", "", "", "seed note", ""})
	observations := tabular.NewSheet("observations", [][]string{
		{"case_code", "content", "created_at"},
		{"T-7", "checked logs", "2024-01-02T10:00:00Z"},
		{"T-7", "restarted", "2024-01-03T10:00:00Z"},
	}, true)

	first, err := imp.Import(context.Background(), cases, observations, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Cases.Created)
	assert.Equal(t, 2, first.Observations.Created)
	afterFirst := env.observations.count()
	assert.Equal(t, 3, afterFirst)

	second, err := imp.Import(context.Background(), cases, observations, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Cases.Updated)
	assert.Equal(t, 0, second.Cases.ObservationsCreated)
	assert.Equal(t, 0, second.Observations.Created)
	assert.Equal(t, 2, second.Observations.Skipped)
	assert.Equal(t, afterFirst, env.observations.count())
}

func TestImportObservations_ResolvesThroughStore(t *testing.T) {
	env := newTestEnv()
	existing := env.seedCase("T-8")
	sheet := tabular.NewSheet("observations", [][]string{
		{"case_code", "content", "created_at"},
		{"T-8", "from store", "2024-01-02"},
		{"NOPE", "orphan", "2024-01-02"},
		{"T-8", "", "2024-01-02"},
	}, true)

	res, err := newTestImporter(env).ImportObservations(context.Background(), sheet, CaseIndex{}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "row 3:")
	assert.Contains(t, res.Errors[1], "row 4:")

	obs, err := env.observations.ListByCase(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), obs[0].CreatedAt)
}

func TestImport_ObservationSchemaCheckedFirst(t *testing.T) {
	env := newTestEnv()
	observations := tabular.NewSheet("observations", [][]string{{"case_code", "content"}}, true)

	_, err := newTestImporter(env).Import(context.Background(),
		caseSheet([]string{"T-9", "Network", "OPEN", "LOW"}), observations, uuid.New())

	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "observations", schemaErr.Source)
	assert.Equal(t, 0, env.cases.count())
}

func TestImportCases_RowLimit(t *testing.T) {
	env := newTestEnv()
	imp := NewTabularImporter(env.cases, env.ledger, env.tx, 1, zap.NewNop())

	_, err := imp.ImportCases(context.Background(), caseSheet(
		[]string{"T-10", "Network", "OPEN", "LOW"},
		[]string{"T-11", "Network", "OPEN", "LOW"},
	), uuid.New())
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 0, env.cases.count())
}
