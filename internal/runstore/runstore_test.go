package runstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylelab/stylebench/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	run := &models.RunRecord{
		RunID:     "run-1",
		StartedAt: time.Now().UTC(),
		Phase:     models.PhasePersisted,
		Evaluations: []models.EvaluationRecord{
			{Style: "watercolor", Percentage: 88.5, Grade: models.GradeA},
		},
	}

	require.NoError(t, store.Save(run, false))

	loaded, err := store.Load("run-1")
	require.NoError(t, err)
	assert.Equal(t, run.RunID, loaded.RunID)
	assert.Equal(t, models.PhasePersisted, loaded.Phase)
	require.Len(t, loaded.Evaluations, 1)
	assert.InDelta(t, 88.5, loaded.Evaluations[0].Percentage, 1e-9)
}

func TestStore_SaveDuplicateFails(t *testing.T) {
	store := newTestStore(t)
	run := &models.RunRecord{RunID: "run-1", StartedAt: time.Now()}

	require.NoError(t, store.Save(run, false))
	err := store.Save(run, false)
	assert.ErrorIs(t, err, ErrRunAlreadyExists)

	// Overwrite is the retry path; it must succeed.
	require.NoError(t, store.Save(run, true))
}

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		run := &models.RunRecord{
			RunID:     id,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Phase:     models.PhasePersisted,
		}
		require.NoError(t, store.Save(run, false))
	}

	runs, err := store.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, "mid", runs[1].RunID)
	assert.Equal(t, "old", runs[2].RunID)
}

func TestStore_FindLatestPrior(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	older := &models.RunRecord{RunID: "older", StartedAt: base, Phase: models.PhasePersisted}
	newer := &models.RunRecord{RunID: "newer", StartedAt: base.Add(time.Hour), Phase: models.PhasePersisted}
	// Unfinished runs are never baselines.
	partial := &models.RunRecord{RunID: "partial", StartedAt: base.Add(2 * time.Hour), Phase: models.PhaseEvaluated}

	require.NoError(t, store.Save(older, false))
	require.NoError(t, store.Save(newer, false))
	require.NoError(t, store.Save(partial, false))

	current := &models.RunRecord{RunID: "current", StartedAt: base.Add(3 * time.Hour)}
	baseline, err := store.FindLatestPrior(current)
	require.NoError(t, err)
	assert.Equal(t, "newer", baseline.RunID)
}

func TestStore_FindLatestPrior_NoBaseline(t *testing.T) {
	store := newTestStore(t)
	current := &models.RunRecord{RunID: "current", StartedAt: time.Now()}

	_, err := store.FindLatestPrior(current)
	assert.ErrorIs(t, err, ErrNoBaseline)
}

func TestStore_FindLatestPrior_SkipsSelf(t *testing.T) {
	store := newTestStore(t)
	current := &models.RunRecord{RunID: "current", StartedAt: time.Now(), Phase: models.PhasePersisted}
	require.NoError(t, store.Save(current, false))

	_, err := store.FindLatestPrior(current)
	assert.ErrorIs(t, err, ErrNoBaseline)
}
