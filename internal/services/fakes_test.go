package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory stores. They hand out copies, like a database would, so a
// service holding a *Case cannot change stored state without Update.

type fakeCases struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]models.Case
	order   []uuid.UUID
	fail    map[string]error
	updates int
}

func newFakeCases() *fakeCases {
	return &fakeCases{byID: map[uuid.UUID]models.Case{}, fail: map[string]error{}}
}

func (f *fakeCases) Create(_ context.Context, c *models.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[c.Code]; err != nil {
		return err
	}
	for _, existing := range f.byID {
		if existing.Code == c.Code {
			return models.ErrConflict
		}
	}
	c.ID = uuid.New()
	f.byID[c.ID] = *c
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCases) GetByID(_ context.Context, id uuid.UUID) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCases) GetByCode(_ context.Context, code string) (*models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if c := f.byID[id]; c.Code == code {
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeCases) Update(_ context.Context, c *models.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[c.Code]; err != nil {
		return err
	}
	if _, ok := f.byID[c.ID]; !ok {
		return models.ErrNotFound
	}
	f.byID[c.ID] = *c
	f.updates++
	return nil
}

func (f *fakeCases) List(_ context.Context, _ models.CaseFilter) ([]models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Case, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	return out, nil
}

func (f *fakeCases) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeCases) mustGetByCode(code string) models.Case {
	c, err := f.GetByCode(context.Background(), code)
	if err != nil {
		panic(err)
	}
	return *c
}

type fakeObservations struct {
	mu    sync.Mutex
	items []models.Observation
}

func (f *fakeObservations) Create(_ context.Context, o *models.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = uuid.New()
	f.items = append(f.items, *o)
	return nil
}

func (f *fakeObservations) GetByID(_ context.Context, id uuid.UUID) (*models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.items {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeObservations) UpdateContent(_ context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Content = content
			f.items[i].EditedAt = &editedAt
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeObservations) ExistsWithContent(_ context.Context, caseID uuid.UUID, content string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.items {
		if o.CaseID == caseID && o.Content == content {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeObservations) ListByCase(_ context.Context, caseID uuid.UUID) ([]models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Observation
	for _, o := range f.items {
		if o.CaseID == caseID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeObservations) All(_ context.Context) ([]models.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Observation(nil), f.items...), nil
}

func (f *fakeObservations) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeAudits struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (f *fakeAudits) Create(_ context.Context, e *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = uuid.New()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudits) ListByCase(_ context.Context, caseID uuid.UUID) ([]models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudits) byAction(action models.AuditAction) []models.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type fakeAttachments struct {
	items []models.Attachment
}

func (f *fakeAttachments) Create(_ context.Context, a *models.Attachment) error {
	a.ID = uuid.New()
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeAttachments) ListByCase(_ context.Context, caseID uuid.UUID) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range f.items {
		if a.CaseID == caseID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeUsers struct {
	names map[uuid.UUID]string
	err   error
}

func (f *fakeUsers) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

// fakeTx runs fn directly. Rollback is not simulated.
type fakeTx struct {
	calls int
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

var errStoreDown = errors.New("store down")

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func strPtr(s string) *string { return &s }

type testEnv struct {
	cases        *fakeCases
	observations *fakeObservations
	audits       *fakeAudits
	attachments  *fakeAttachments
	users        *fakeUsers
	tx           *fakeTx

	ledger   *ObservationLedger
	recorder *AuditRecorder
}

func newTestEnv() *testEnv {
	log := zap.NewNop()
	env := &testEnv{
		cases:        newFakeCases(),
		observations: &fakeObservations{},
		audits:       &fakeAudits{},
		attachments:  &fakeAttachments{},
		users:        &fakeUsers{names: map[uuid.UUID]string{}},
		tx:           &fakeTx{},
	}
	env.ledger = NewObservationLedger(env.cases, env.observations, log)
	env.recorder = NewAuditRecorder(env.cases, env.audits, log)
	return env
}

// seedCase stores a case directly, bypassing services.
func (e *testEnv) seedCase(code string, mutate ...func(*models.Case)) models.Case {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := models.Case{
		Code:      code,
		Service:   "Network",
		Status:    models.CaseStatusOpen,
		Priority:  models.PriorityMedium,
		OpenedAt:  at,
		CreatedAt: at,
		UpdatedAt: at,
	}
	for _, m := range mutate {
		m(&c)
	}
	if err := e.cases.Create(context.Background(), &c); err != nil {
		panic(err)
	}
	return c
}
