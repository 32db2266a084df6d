package migrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/projects"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
)

// LegacyDatabaseName is the file of the retired global version database.
const LegacyDatabaseName = "video-editor-meta.db"

// legacyCleanup makes the legacy database removal happen once per process.
var legacyCleanup sync.Once

// TransformFunc upgrades one record. skipped reports that the record already
// has the target shape and must be left alone.
type TransformFunc func(rec projects.Record) (out projects.Record, skipped bool, err error)

type Migration struct {
	From      int
	To        int
	Name      string
	Transform TransformFunc
}

type Result struct {
	MigratedCount int
}

// Store is the part of the project repository the runner needs.
type Store interface {
	Records(ctx context.Context) ([]projects.Record, error)
	PutRecord(ctx context.Context, id string, rec projects.Record) error
}

type Runner struct {
	store   Store
	dataDir string
	log     logging.Logger
}

// NewRunner creates a Runner over store. dataDir is where the legacy
// database may still live; empty skips the cleanup.
func NewRunner(store Store, dataDir string, log logging.Logger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{store: store, dataDir: dataDir, log: log}
}

// Run applies migrations to every record. For each record it repeatedly
// applies the migration whose From equals the record's version until none
// matches, a migration reports skipped, or the result has no id. Each applied
// step is persisted and counted.
//
// A failing transform leaves that record as it is; a failing write aborts
// the run.
func (r *Runner) Run(ctx context.Context, migrations []Migration) (Result, error) {
	r.removeLegacyDatabase(ctx)

	ordered := append([]Migration(nil), migrations...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].From < ordered[j].From })

	records, err := r.store.Records(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load project records: %w", err)
	}

	var res Result
	for _, rec := range records {
		n, err := r.migrateRecord(ctx, rec, ordered)
		res.MigratedCount += n
		if err != nil {
			return res, err
		}
	}

	if res.MigratedCount > 0 {
		r.log.Info(ctx, "project records migrated", "count", res.MigratedCount)
	}
	return res, nil
}

func (r *Runner) migrateRecord(ctx context.Context, rec projects.Record, ordered []Migration) (int, error) {
	count := 0
	current := DetectVersion(rec)

	for _, m := range ordered {
		if m.From != current {
			continue
		}

		out, skipped, err := m.Transform(rec)
		if err != nil {
			r.log.Warn(ctx, "migration failed, record left as is",
				"migration", m.Name, "from", m.From, "to", m.To, "project_id", ProjectID(rec), "error", err)
			return count, nil
		}
		if skipped {
			return count, nil
		}

		id := ProjectID(out)
		if id == "" {
			r.log.Warn(ctx, "migrated record has no id, not saved", "migration", m.Name)
			return count, nil
		}

		if err := r.store.PutRecord(ctx, id, out); err != nil {
			return count, fmt.Errorf("failed to save migrated project %s: %w", id, err)
		}
		count++
		current = m.To
		rec = out
	}
	return count, nil
}

func (r *Runner) removeLegacyDatabase(ctx context.Context) {
	legacyCleanup.Do(func() {
		if r.dataDir == "" {
			return
		}
		path := filepath.Join(r.dataDir, LegacyDatabaseName)
		if err := os.Remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.log.Debug(ctx, "legacy database not removed", "path", path, "error", err)
			}
			return
		}
		r.log.Info(ctx, "legacy database removed", "path", path)
	})
}

// DetectVersion infers the schema version of a raw record: an explicit
// numeric version, else 1 when it has a non-empty scenes list, else 0.
func DetectVersion(rec projects.Record) int {
	if v, ok := number(rec["version"]); ok {
		return int(v)
	}
	if scenes, ok := rec["scenes"].([]any); ok && len(scenes) > 0 {
		return 1
	}
	return 0
}

// ProjectID returns the record's id, looking at the top level first and
// then inside metadata.
func ProjectID(rec projects.Record) string {
	if id, ok := rec["id"].(string); ok && id != "" {
		return id
	}
	if meta, ok := rec["metadata"].(map[string]any); ok {
		if id, ok := meta["id"].(string); ok {
			return id
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
