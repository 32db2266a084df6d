package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/cryptox"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
)

// AssetAdder adds an asset to a project's collection.
type AssetAdder interface {
	Add(ctx context.Context, projectID string, asset models.MediaAsset) (models.MediaAsset, error)
}

// ProjectFunc returns the id of the project imports go to. ok is false when
// no project is open.
type ProjectFunc func() (id string, ok bool)

// Importer adds created or modified files to the active project. A file is
// imported again only when its content changes.
type Importer struct {
	root    string
	adder   AssetAdder
	project ProjectFunc
	log     logging.Logger

	mu   sync.Mutex
	seen map[string]string
}

func NewImporter(root string, adder AssetAdder, project ProjectFunc, log logging.Logger) *Importer {
	return &Importer{root: root, adder: adder, project: project, log: log, seen: map[string]string{}}
}

// Run handles events until ctx ends or events is closed.
func (im *Importer) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, err := im.Handle(ctx, ev); err != nil {
				im.log.Warn(ctx, "import failed", "path", ev.Path, "error", err)
			}
		}
	}
}

// Handle processes one event and returns the imported asset, if any.
func (im *Importer) Handle(ctx context.Context, ev Event) (*models.MediaAsset, error) {
	if ev.Op == OpRemove {
		im.mu.Lock()
		delete(im.seen, ev.Path)
		im.mu.Unlock()
		im.log.Debug(ctx, "file removed from import folder", "path", ev.Path)
		return nil, nil
	}

	projectID, ok := im.project()
	if !ok {
		im.log.Info(ctx, "no open project, skipping import", "path", ev.Path)
		return nil, nil
	}

	path := filepath.Join(im.root, filepath.FromSlash(ev.Path))
	hash, err := hashFile(path)
	if err != nil {
		return nil, err
	}
	mark := projectID + ":" + hash
	im.mu.Lock()
	unchanged := im.seen[ev.Path] == mark
	im.mu.Unlock()
	if unchanged {
		return nil, nil
	}

	asset, err := media.FromFile(path)
	if errors.Is(err, media.ErrUnsupportedFile) {
		im.log.Debug(ctx, "skipping unsupported file", "path", ev.Path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	im.mu.Lock()
	if im.seen[ev.Path] == mark {
		im.mu.Unlock()
		return nil, nil
	}
	im.seen[ev.Path] = mark
	im.mu.Unlock()

	asset.ContentHash = hash
	added, err := im.adder.Add(ctx, projectID, asset)
	if err != nil {
		im.mu.Lock()
		delete(im.seen, ev.Path)
		im.mu.Unlock()
		return nil, err
	}
	im.log.Info(ctx, "imported media", "path", ev.Path, "media_id", added.ID, "project_id", projectID)
	return &added, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash, _, err := cryptox.HashReader(f)
	return hash, err
}
