package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adenhq/hive-go/store"
)

func newTestStore(t *testing.T) *SqliteRunStore {
	t.Helper()
	s, err := NewSqliteRunStore(SqliteOptions{
		Path: filepath.Join(t.TempDir(), "runs.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRun(agent, id string, startedAt time.Time) *store.Run {
	return &store.Run{
		ID:        id,
		Agent:     agent,
		Status:    store.RunStatusCompleted,
		StartedAt: startedAt,
		Decisions: []store.Decision{
			{NodeID: "plan", Outcome: &store.Outcome{Success: true, LatencyMS: 10}},
		},
	}
}

func TestSqliteRunStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newRun("researcher", "run_1", time.Now().UTC())
	require.NoError(t, s.Save(ctx, run))

	loaded, err := s.Load(ctx, "researcher", "run_1")
	require.NoError(t, err)
	assert.Equal(t, "run_1", loaded.ID)
	assert.Equal(t, "researcher", loaded.Agent)
	require.Len(t, loaded.Decisions, 1)
	assert.Equal(t, int64(10), loaded.Decisions[0].Outcome.LatencyMS)
}

func TestSqliteRunStore_LoadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "researcher", "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestSqliteRunStore_SaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newRun("a", "run_1", time.Now().UTC())
	require.NoError(t, s.Save(ctx, run))

	run.Status = store.RunStatusFailed
	require.NoError(t, s.Save(ctx, run))

	loaded, err := s.Load(ctx, "a", "run_1")
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusFailed, loaded.Status)

	runs, err := s.List(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSqliteRunStore_ListMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, s.Save(ctx, newRun("a", "run_old", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, newRun("a", "run_new", base)))
	require.NoError(t, s.Save(ctx, newRun("a", "run_mid", base.Add(-time.Hour))))
	require.NoError(t, s.Save(ctx, newRun("other", "run_x", base)))

	runs, err := s.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run_new", runs[0].ID)
	assert.Equal(t, "run_mid", runs[1].ID)
	assert.Equal(t, "run_old", runs[2].ID)
}

func TestSqliteRunStore_Latest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Latest(ctx, "a")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	base := time.Now().UTC()
	require.NoError(t, s.Save(ctx, newRun("a", "run_old", base.Add(-time.Hour))))
	require.NoError(t, s.Save(ctx, newRun("a", "run_new", base)))

	latest, err := s.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "run_new", latest.ID)
}

func TestSqliteRunStore_DeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newRun("a", "run_1", time.Now().UTC())))
	require.NoError(t, s.Save(ctx, newRun("a", "run_2", time.Now().UTC())))

	require.NoError(t, s.Delete(ctx, "a", "run_1"))
	_, err := s.Load(ctx, "a", "run_1")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	require.NoError(t, s.Clear(ctx, "a"))
	runs, err := s.List(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSqliteRunStore_CustomTableName(t *testing.T) {
	s, err := NewSqliteRunStore(SqliteOptions{
		Path:      filepath.Join(t.TempDir(), "runs.db"),
		TableName: "agent_runs",
	})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, newRun("a", "run_1", time.Now().UTC())))

	loaded, err := s.Load(ctx, "a", "run_1")
	require.NoError(t, err)
	assert.Equal(t, "run_1", loaded.ID)
}
