package services

import (
	"context"
	"testing"
	"time"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAppend_UnknownCase(t *testing.T) {
	env := newTestEnv()

	_, err := env.ledger.Append(context.Background(), uuid.New(), "hello", uuid.New(), nil)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 0, env.observations.count())
}

func TestLedgerAppend_UsesGivenTimestamp(t *testing.T) {
	env := newTestEnv()
	c := env.seedCase("L-1")
	at := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)

	o, err := env.ledger.Append(context.Background(), c.ID, "hello", uuid.New(), &at)
	require.NoError(t, err)
	assert.Equal(t, at, o.CreatedAt)
	assert.Nil(t, o.EditedAt)
}

func TestLedgerAppendIfAbsent(t *testing.T) {
	env := newTestEnv()
	c := env.seedCase("L-2")
	actor := uuid.New()

	created, err := env.ledger.AppendIfAbsent(context.Background(), c.ID, "same", actor, nil)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.ledger.AppendIfAbsent(context.Background(), c.ID, "same", actor, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, env.observations.count())
}

func TestLedgerEdit_KeepsCreationMetadata(t *testing.T) {
	env := newTestEnv()
	env.ledger.now = fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	c := env.seedCase("L-3")
	author := uuid.New()

	orig, err := env.ledger.Append(context.Background(), c.ID, "first draft", author, nil)
	require.NoError(t, err)

	edited, err := env.ledger.Edit(context.Background(), orig.ID, "final", models.Actor{UserID: author, Role: models.RoleViewer})
	require.NoError(t, err)

	require.NotNil(t, edited.EditedAt)
	assert.Equal(t, "final", edited.Content)
	assert.Equal(t, orig.CreatedAt, edited.CreatedAt)
	assert.Equal(t, orig.CreatedBy, edited.CreatedBy)

	stored, err := env.observations.GetByID(context.Background(), orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Content)
	assert.Equal(t, orig.CreatedAt, stored.CreatedAt)
	assert.Equal(t, *orig.CreatedBy, *stored.CreatedBy)
	require.NotNil(t, stored.EditedAt)
}

func TestLedgerEdit_Permissions(t *testing.T) {
	author := uuid.New()

	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{name: "author viewer", actor: models.Actor{UserID: author, Role: models.RoleViewer}},
		{name: "other editor", actor: models.Actor{UserID: uuid.New(), Role: models.RoleEditor}},
		{name: "other admin", actor: models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}},
		{name: "other viewer", actor: models.Actor{UserID: uuid.New(), Role: models.RoleViewer}, wantErr: models.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			c := env.seedCase("L-4")
			o, err := env.ledger.Append(context.Background(), c.ID, "text", author, nil)
			require.NoError(t, err)

			_, err = env.ledger.Edit(context.Background(), o.ID, "changed", tt.actor)
			stored, getErr := env.observations.GetByID(context.Background(), o.ID)
			require.NoError(t, getErr)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "text", stored.Content)
				assert.Nil(t, stored.EditedAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "changed", stored.Content)
		})
	}
}

func TestLedgerEdit_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.ledger.Edit(context.Background(), uuid.New(), "x", models.Actor{UserID: uuid.New(), Role: models.RoleAdmin})
	require.ErrorIs(t, err, models.ErrNotFound)
}
