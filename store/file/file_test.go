package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adenhq/hive-go/store"
)

func newTestStore(t *testing.T) *FileRunStore {
	t.Helper()
	s, err := NewFileRunStore(FileOptions{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return s
}

func newRun(agent, id string, startedAt time.Time) *store.Run {
	return &store.Run{
		ID:        id,
		Agent:     agent,
		Status:    store.RunStatusCompleted,
		StartedAt: startedAt,
		Decisions: []store.Decision{{NodeID: "plan", Outcome: &store.Outcome{Success: true}}},
	}
}

func TestFileRunStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newRun("researcher", "run_1", time.Now().UTC())
	require.NoError(t, s.Save(ctx, run))

	loaded, err := s.Load(ctx, "researcher", "run_1")
	require.NoError(t, err)
	assert.Equal(t, "run_1", loaded.ID)
	assert.Equal(t, store.RunStatusCompleted, loaded.Status)
	require.Len(t, loaded.Decisions, 1)
	assert.True(t, loaded.Decisions[0].Outcome.Success)
}

func TestFileRunStore_LayoutOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileRunStore(FileOptions{BaseDir: dir})
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), newRun("researcher", "run_1", time.Now())))

	_, err = os.Stat(filepath.Join(dir, "researcher", "runs", "run_1.json"))
	assert.NoError(t, err)
}

func TestFileRunStore_LoadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "researcher", "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestFileRunStore_ListMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, s.Save(ctx, newRun("a", "run_old", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, newRun("a", "run_new", base)))
	require.NoError(t, s.Save(ctx, newRun("a", "run_mid", base.Add(-time.Hour))))

	runs, err := s.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run_new", runs[0].ID)
	assert.Equal(t, "run_old", runs[2].ID)
}

func TestFileRunStore_ListEmptyAgent(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileRunStore_Latest(t *testing.T) {
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

func TestFileRunStore_DeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newRun("a", "run_1", time.Now())))

	require.NoError(t, s.Delete(ctx, "a", "run_1"))
	_, err := s.Load(ctx, "a", "run_1")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	// Deleting twice is not an error.
	require.NoError(t, s.Delete(ctx, "a", "run_1"))

	require.NoError(t, s.Save(ctx, newRun("a", "run_2", time.Now())))
	require.NoError(t, s.Clear(ctx, "a"))
	runs, err := s.List(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileRunStore_ListAgents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	agents, err := s.ListAgents()
	require.NoError(t, err)
	assert.Empty(t, agents)

	require.NoError(t, s.Save(ctx, newRun("writer", "run_1", time.Now())))
	require.NoError(t, s.Save(ctx, newRun("researcher", "run_2", time.Now())))

	agents, err = s.ListAgents()
	require.NoError(t, err)
	assert.Equal(t, []string{"researcher", "writer"}, agents)
}

func TestFileRunStore_ListSkipsCorruptDocuments(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileRunStore(FileOptions{BaseDir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newRun("a", "run_1", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "runs", "broken.json"), []byte("{not json"), 0o644))

	runs, err := s.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run_1", runs[0].ID)
}
