package media

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	mediarepo "github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/tasks"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/timeline"
	"github.com/ReloopAI/vibecut-frontend-2/internal/cryptox"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Manager is the asset collection of the active project.
type Manager struct {
	repo     mediarepo.Repository
	cloud    Cloud
	tokens   TokenSource
	tasks    *tasks.Group
	log      logging.Logger
	previews *PreviewCache
	release  func(url string)
	wrap     TransferWrapper

	mu        sync.RWMutex
	assets    []models.MediaAsset
	loading   bool
	listeners map[int]func()
	nextSub   int
	editor    Editor

	inflight singleflight.Group
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithTasks sets the group background syncs run in.
func WithTasks(g *tasks.Group) Option {
	return func(m *Manager) { m.tasks = g }
}

// WithPreviewReleaser sets the function that frees an asset's local preview
// handles when the asset leaves the collection.
func WithPreviewReleaser(fn func(url string)) Option {
	return func(m *Manager) { m.release = fn }
}

func WithPreviewCache(c *PreviewCache) Option {
	return func(m *Manager) { m.previews = c }
}

func WithTransferWrapper(fn TransferWrapper) Option {
	return func(m *Manager) { m.wrap = fn }
}

func NewManager(repo mediarepo.Repository, cloud Cloud, tokens TokenSource, opts ...Option) *Manager {
	m := &Manager{
		repo:      repo,
		cloud:     cloud,
		tokens:    tokens,
		log:       logging.Discard(),
		previews:  NewPreviewCache(),
		release:   func(string) {},
		listeners: map[int]func(){},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tasks == nil {
		m.tasks = tasks.NewGroup(m.log)
	}
	return m
}

// Attach connects the manager to the editor owning the timeline.
func (m *Manager) Attach(e Editor) {
	m.mu.Lock()
	m.editor = e
	m.mu.Unlock()
}

func (m *Manager) Previews() *PreviewCache {
	return m.previews
}

// Wait blocks until every background sync started so far is done.
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Subscribe registers fn to run after every change of the collection. The
// returned function removes it.
func (m *Manager) Subscribe(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify() {
	m.mu.RLock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Assets returns a copy of the collection.
func (m *Manager) Assets() []models.MediaAsset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.assets)
}

func (m *Manager) Asset(id string) (models.MediaAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return models.MediaAsset{}, false
	}
	return m.assets[i], true
}

// indexOf must be called with m.mu held.
func (m *Manager) indexOf(id string) int {
	return slices.IndexFunc(m.assets, func(a models.MediaAsset) bool { return a.ID == id })
}

func (m *Manager) SetAssets(assets []models.MediaAsset) {
	m.mu.Lock()
	m.assets = slices.Clone(assets)
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
	m.notify()
}

// Add gives asset a fresh id, appends it and persists it. When persisting
// fails the append is undone. On success a cloud sync is started in the
// background.
func (m *Manager) Add(ctx context.Context, projectID string, asset models.MediaAsset) (models.MediaAsset, error) {
	asset.ID = uuid.NewString()
	if asset.Size == 0 {
		asset.Size = int64(len(asset.Data))
	}
	if asset.ContentHash == "" && len(asset.Data) > 0 {
		asset.ContentHash = cryptox.HashContent(asset.Data)
	}
	if asset.Sync == nil {
		asset.Sync = models.LocalOnly{}
	}

	m.mu.Lock()
	m.assets = append(m.assets, asset)
	m.mu.Unlock()
	m.notify()

	if err := m.repo.Save(ctx, projectID, asset); err != nil {
		m.log.Error(ctx, "failed to save media asset", "project_id", projectID, "media_id", asset.ID, "error", err)
		m.mu.Lock()
		if i := m.indexOf(asset.ID); i >= 0 {
			m.assets = slices.Delete(m.assets, i, i+1)
		}
		m.mu.Unlock()
		m.notify()
		return models.MediaAsset{}, fmt.Errorf("failed to save media asset: %w", err)
	}

	id := asset.ID
	m.tasks.Go(ctx, "media-sync", func(ctx context.Context) error {
		m.SyncMediaAssetToCloud(ctx, projectID, id)
		return nil
	})
	return asset, nil
}

// Remove drops an asset: its previews are released, timeline elements that
// use it are deleted and the project is marked dirty. Deleting the stored
// record is best effort.
func (m *Manager) Remove(ctx context.Context, projectID, id string) {
	m.previews.Evict(id)

	m.mu.Lock()
	var removed *models.MediaAsset
	if i := m.indexOf(id); i >= 0 {
		a := m.assets[i]
		removed = &a
		m.assets = slices.Delete(m.assets, i, i+1)
	}
	editor := m.editor
	m.mu.Unlock()

	if removed != nil {
		m.releasePreviews(*removed)
	}
	m.notify()

	if editor != nil {
		editor.MarkDirty()
		if refs := elementsUsing(editor.Tracks(), id); len(refs) > 0 {
			editor.DeleteElements(refs)
		}
	}

	if err := m.repo.Delete(ctx, projectID, id); err != nil {
		m.log.Error(ctx, "failed to delete media asset", "project_id", projectID, "media_id", id, "error", err)
	}
}

func elementsUsing(tracks []models.Track, mediaID string) []ElementRef {
	var refs []ElementRef
	for _, t := range tracks {
		for _, e := range t.Elements {
			if timeline.RequiresMediaID(e) && e.MediaID == mediaID {
				refs = append(refs, ElementRef{TrackID: t.ID, ElementID: e.ID})
			}
		}
	}
	return refs
}

func (m *Manager) releasePreviews(a models.MediaAsset) {
	if a.URL == "" {
		return
	}
	m.release(a.URL)
	if a.ThumbnailURL != "" {
		m.release(a.ThumbnailURL)
	}
}

// LoadProjectMedia replaces the collection with the stored assets of
// projectID. On failure the collection is left as it was.
func (m *Manager) LoadProjectMedia(ctx context.Context, projectID string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	assets, err := m.repo.List(ctx, projectID)
	if err != nil {
		m.log.Error(ctx, "failed to load media assets", "project_id", projectID, "error", err)
		return fmt.Errorf("failed to load media assets: %w", err)
	}

	m.mu.Lock()
	m.assets = assets
	m.mu.Unlock()
	m.notify()
	return nil
}

// ClearProjectMedia empties the collection and deletes every asset of
// projectID from the store.
func (m *Manager) ClearProjectMedia(ctx context.Context, projectID string) error {
	m.mu.Lock()
	assets := m.assets
	m.assets = nil
	m.mu.Unlock()

	for _, a := range assets {
		m.releasePreviews(a)
	}
	m.notify()

	var errs []error
	for _, a := range assets {
		if err := m.repo.Delete(ctx, projectID, a.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.log.Error(ctx, "failed to clear media assets from storage", "project_id", projectID, "error", err)
		return err
	}
	return nil
}

// ClearAll empties the collection and the preview cache without touching
// the store, e.g. when the active project is closed.
func (m *Manager) ClearAll() {
	m.previews.Clear()

	m.mu.Lock()
	assets := m.assets
	m.assets = nil
	m.mu.Unlock()

	for _, a := range assets {
		m.releasePreviews(a)
	}
	m.notify()
}
