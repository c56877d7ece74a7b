package services

import (
	"context"
	"sort"

	"github.com/case-tracker/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const unknownActor = "Unknown"

// TimelineAssembler merges a case's observations and audit entries into one
// chronological, read-only history.
type TimelineAssembler struct {
	cases        caseStore
	observations observationStore
	audits       auditStore
	users        userDirectory
	log          *zap.Logger
}

func NewTimelineAssembler(cases caseStore, observations observationStore, audits auditStore, users userDirectory, log *zap.Logger) *TimelineAssembler {
	return &TimelineAssembler{cases: cases, observations: observations, audits: audits, users: users, log: log}
}

func (t *TimelineAssembler) Build(ctx context.Context, caseID uuid.UUID) ([]models.TimelineEntry, error) {
	if _, err := t.cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	observations, err := t.observations.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	audits, err := t.audits.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.TimelineEntry, 0, len(observations)+len(audits))
	for _, o := range observations {
		entries = append(entries, models.TimelineEntry{
			Kind:      models.TimelineObservation,
			ID:        o.ID,
			Timestamp: o.CreatedAt,
			ActorID:   o.CreatedBy,
			Content:   o.Content,
			EditedAt:  o.EditedAt,
		})
	}
	for _, a := range audits {
		actor := a.UserID
		entries = append(entries, models.TimelineEntry{
			Kind:      models.TimelineAudit,
			ID:        a.ID,
			Timestamp: a.Timestamp,
			ActorID:   &actor,
			Action:    a.Action,
			Details:   a.Details,
		})
	}

	t.resolveNames(ctx, entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// resolveNames fills ActorName. A failing directory degrades to "Unknown"
// instead of failing the read.
func (t *TimelineAssembler) resolveNames(ctx context.Context, entries []models.TimelineEntry) {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, e := range entries {
		if e.ActorID == nil {
			continue
		}
		if _, ok := seen[*e.ActorID]; !ok {
			seen[*e.ActorID] = struct{}{}
			ids = append(ids, *e.ActorID)
		}
	}

	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var err error
		names, err = t.users.NamesByIDs(ctx, ids)
		if err != nil {
			t.log.Warn("failed to resolve timeline actors", zap.Error(err))
			names = map[uuid.UUID]string{}
		}
	}

	for i := range entries {
		entries[i].ActorName = unknownActor
		if entries[i].ActorID == nil {
			continue
		}
		if name, ok := names[*entries[i].ActorID]; ok && name != "" {
			entries[i].ActorName = name
		}
	}
}
