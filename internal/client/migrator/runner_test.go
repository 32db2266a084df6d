package migrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv/kvtest"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/projects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjects(t *testing.T) *projects.KVRepository {
	t.Helper()
	store, _ := kvtest.NewSQLite(t)
	return projects.NewKVRepository(store)
}

// memStore is an in-memory Store with an optional write failure.
type memStore struct {
	mu      sync.Mutex
	records []projects.Record
	puts    map[string]projects.Record
	putErr  error
}

func (m *memStore) Records(context.Context) ([]projects.Record, error) {
	return m.records, nil
}

func (m *memStore) PutRecord(_ context.Context, id string, rec projects.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.puts == nil {
		m.puts = map[string]projects.Record{}
	}
	m.puts[id] = rec
	return nil
}

// stamp is a migration that only writes the target version.
func stamp(from, to int) Migration {
	return Migration{From: from, To: to, Transform: func(rec projects.Record) (projects.Record, bool, error) {
		out := clone(rec)
		out["version"] = float64(to)
		if to == 1 {
			delete(out, "version")
			out["scenes"] = []any{map[string]any{"id": "s1"}}
		}
		return out, false, nil
	}}
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		rec  projects.Record
		want int
	}{
		{"explicit version", projects.Record{"version": float64(2), "scenes": []any{}}, 2},
		{"int version", projects.Record{"version": 3}, 3},
		{"scenes without version", projects.Record{"scenes": []any{map[string]any{"id": "s"}}}, 1},
		{"empty scenes", projects.Record{"scenes": []any{}}, 0},
		{"nothing", projects.Record{"id": "p"}, 0},
		{"non numeric version", projects.Record{"version": "2"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectVersion(tt.rec))
		})
	}
}

func TestProjectID(t *testing.T) {
	assert.Equal(t, "a", ProjectID(projects.Record{"id": "a", "metadata": map[string]any{"id": "b"}}))
	assert.Equal(t, "b", ProjectID(projects.Record{"metadata": map[string]any{"id": "b"}}))
	assert.Equal(t, "", ProjectID(projects.Record{"name": "x"}))
}

func TestRun_ChainsMigrations(t *testing.T) {
	ctx := context.Background()
	repo := newProjects(t)
	require.NoError(t, repo.PutRecord(ctx, "p0", projects.Record{"id": "p0", "name": "Legacy"}))

	res, err := NewRunner(repo, "", nil).Run(ctx, []Migration{stamp(1, 2), stamp(0, 1)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.MigratedCount)

	records, err := repo.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, DetectVersion(records[0]))
}

func TestRun_Builtin(t *testing.T) {
	ctx := context.Background()
	repo := newProjects(t)

	require.NoError(t, repo.PutRecord(ctx, "v0", projects.Record{
		"id":        "v0",
		"name":      "Flat",
		"createdAt": "2025-01-01T00:00:00.000Z",
		"updatedAt": "2025-01-02T00:00:00.000Z",
		"fps":       float64(25),
		"tracks": []any{map[string]any{
			"id": "t1", "name": "Main", "type": "video", "muted": false, "hidden": false,
			"elements": []any{map[string]any{"id": "e1", "type": "video", "mediaId": "m1", "duration": float64(3)}},
		}},
	}))
	require.NoError(t, repo.PutRecord(ctx, "v1", projects.Record{
		"id":     "v1",
		"name":   "Scenes",
		"scenes": []any{map[string]any{"id": "s1", "name": "Main", "isMain": true, "tracks": []any{}}},
	}))
	require.NoError(t, repo.PutRecord(ctx, "v2", projects.Record{
		"metadata": map[string]any{"id": "v2", "name": "Current"},
		"scenes":   []any{},
		"version":  float64(2),
	}))

	res, err := NewRunner(repo, "", nil).Run(ctx, Builtin())
	require.NoError(t, err)
	assert.Equal(t, 3, res.MigratedCount)

	p0, err := repo.Get(ctx, "v0")
	require.NoError(t, err)
	assert.Equal(t, 2, p0.Version)
	assert.Equal(t, "Flat", p0.Metadata.Name)
	assert.Equal(t, 25, p0.Settings.FPS)
	assert.Equal(t, 1920, p0.Settings.CanvasSize.Width)
	require.Len(t, p0.Scenes, 1)
	assert.True(t, p0.Scenes[0].IsMain)
	assert.Equal(t, p0.Scenes[0].ID, p0.CurrentSceneID)
	assert.Equal(t, "m1", p0.Scenes[0].Tracks[0].Elements[0].MediaID)
	assert.Equal(t, 2025, p0.Scenes[0].CreatedAt.Year())

	p1, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, p1.Version)
	assert.Equal(t, "s1", p1.CurrentSceneID)
	assert.NotNil(t, p1.Scenes[0].Bookmarks)

	// A second run finds nothing to do.
	res, err = NewRunner(repo, "", nil).Run(ctx, Builtin())
	require.NoError(t, err)
	assert.Equal(t, 0, res.MigratedCount)
}

func TestRun_SkippedStops(t *testing.T) {
	store := &memStore{records: []projects.Record{{"id": "p"}}}
	skip := Migration{From: 0, To: 1, Transform: func(projects.Record) (projects.Record, bool, error) {
		return nil, true, nil
	}}

	res, err := NewRunner(store, "", nil).Run(context.Background(), []Migration{skip, stamp(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.MigratedCount)
	assert.Empty(t, store.puts)
}

func TestRun_RecordWithoutIDIsSkipped(t *testing.T) {
	store := &memStore{records: []projects.Record{{"name": "anonymous"}, {"id": "p"}}}

	res, err := NewRunner(store, "", nil).Run(context.Background(), []Migration{stamp(0, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MigratedCount)
	assert.Contains(t, store.puts, "p")
}

func TestRun_TransformErrorLeavesRecord(t *testing.T) {
	calls := 0
	flaky := Migration{From: 0, To: 1, Transform: func(rec projects.Record) (projects.Record, bool, error) {
		calls++
		if rec["id"] == "bad" {
			return nil, false, errors.New("boom")
		}
		return stamp(0, 1).Transform(rec)
	}}
	store := &memStore{records: []projects.Record{{"id": "bad"}, {"id": "good"}}}

	res, err := NewRunner(store, "", nil).Run(context.Background(), []Migration{flaky})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, res.MigratedCount)
	assert.NotContains(t, store.puts, "bad")
}

func TestRun_WriteFailureAborts(t *testing.T) {
	store := &memStore{records: []projects.Record{{"id": "p"}}, putErr: errors.New("disk full")}

	_, err := NewRunner(store, "", nil).Run(context.Background(), []Migration{stamp(0, 1)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
}

func TestRun_RemovesLegacyDatabaseOnce(t *testing.T) {
	legacyCleanup = sync.Once{}
	t.Cleanup(func() { legacyCleanup = sync.Once{} })

	dir := t.TempDir()
	legacy := filepath.Join(dir, LegacyDatabaseName)
	require.NoError(t, os.WriteFile(legacy, []byte("old"), 0o600))

	runner := NewRunner(&memStore{}, dir, nil)
	_, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.NoFileExists(t, legacy)

	require.NoError(t, os.WriteFile(legacy, []byte("again"), 0o600))
	_, err = runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.FileExists(t, legacy)
}

func TestRun_MissingLegacyDatabaseIsFine(t *testing.T) {
	legacyCleanup = sync.Once{}
	t.Cleanup(func() { legacyCleanup = sync.Once{} })

	_, err := NewRunner(&memStore{}, t.TempDir(), nil).Run(context.Background(), Builtin())
	require.NoError(t, err)
}
