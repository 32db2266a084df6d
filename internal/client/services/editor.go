package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/mapper"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/projects"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/timeline"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/google/uuid"
)

// ErrNoActiveProject is returned by operations that need an open project.
var ErrNoActiveProject = errors.New("no active project")

const defaultElementDuration = 5.0

// EditorAPI is the part of the API client used by EditorService.
type EditorAPI interface {
	ListProjects(ctx context.Context, p api.ListProjectsParams) (*models.ListEditorProjectsResponse, error)
	GetProject(ctx context.Context, projectID string) (*models.GetEditorProjectResponse, error)
	PutProject(ctx context.Context, projectID string, req models.PutEditorProjectRequest) (*models.PutEditorProjectResponse, error)
	DeleteProject(ctx context.Context, projectID string) error
}

// AssetSource lists the media assets of the active project.
type AssetSource interface {
	Assets() []models.MediaAsset
}

// TokenSource reports the current access token; "" means signed out.
type TokenSource interface {
	Token() string
}

// EditorService owns the active project and moves it between the local store
// and the backend.
type EditorService interface {
	media.Editor

	CreateProject(ctx context.Context, name string) (models.Project, error)
	OpenProject(ctx context.Context, id string) (models.Project, error)
	CloseProject()
	Active() (models.Project, bool)
	SaveLocal(ctx context.Context) error
	IsDirty() bool
	AddMediaElement(asset models.MediaAsset, start float64) (models.Element, error)

	PushToCloud(ctx context.Context) (*models.PutEditorProjectResponse, error)
	PullFromCloud(ctx context.Context, id string) (models.Project, error)
	ResolveConflictOverwrite(ctx context.Context, conflict *api.ConflictError) (*models.PutEditorProjectResponse, error)
	ListCloudProjects(ctx context.Context, p api.ListProjectsParams) (*models.ListEditorProjectsResponse, error)
	ListLocalProjects(ctx context.Context) ([]models.Project, error)
	DeleteCloudProject(ctx context.Context, id string) error
}

type editorService struct {
	api    EditorAPI
	repo   projects.Repository
	assets AssetSource
	tokens TokenSource
	log    logging.Logger

	mu     sync.RWMutex
	active *models.Project
	dirty  bool
	// edits counts MarkDirty calls so a push can tell whether the project
	// changed while it was in flight.
	edits uint64
}

func NewEditorService(a EditorAPI, repo projects.Repository, assets AssetSource, tokens TokenSource, log logging.Logger) EditorService {
	return &editorService{api: a, repo: repo, assets: assets, tokens: tokens, log: log}
}

// NewProject returns an empty project with one main scene holding a main
// video track.
func NewProject(name string, now time.Time) models.Project {
	sceneID := uuid.NewString()
	return models.Project{
		Metadata: models.ProjectMetadata{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CurrentSceneID: sceneID,
		Settings: models.Settings{
			FPS:        timeline.DefaultFPS,
			CanvasSize: models.CanvasSize{Width: 1920, Height: 1080},
			Background: models.Background{Type: "color", Color: "#000000"},
		},
		Scenes: []models.Scene{{
			ID:        sceneID,
			Name:      "Main scene",
			IsMain:    true,
			Bookmarks: []float64{},
			Tracks: []models.Track{{
				ID:       uuid.NewString(),
				Name:     "Main Track",
				Type:     models.TrackVideo,
				IsMain:   true,
				Elements: []models.Element{},
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}},
	}
}

func (s *editorService) CreateProject(ctx context.Context, name string) (models.Project, error) {
	p := NewProject(name, time.Now().UTC())
	if err := s.repo.Save(ctx, &p); err != nil {
		return models.Project{}, fmt.Errorf("failed to save project: %w", err)
	}
	s.setActive(p)
	return p, nil
}

// OpenProject makes the stored project id active. A project missing locally
// is pulled from the cloud when signed in.
func (s *editorService) OpenProject(ctx context.Context, id string) (models.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) && s.tokens.Token() != "" {
		s.log.Info(ctx, "project not found locally, loading from cloud", "project_id", id)
		return s.PullFromCloud(ctx, id)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to load project: %w", err)
	}
	s.setActive(*p)
	return *p, nil
}

func (s *editorService) CloseProject() {
	s.mu.Lock()
	s.active = nil
	s.dirty = false
	s.mu.Unlock()
}

func (s *editorService) setActive(p models.Project) {
	p = p.Clone()
	s.mu.Lock()
	s.active = &p
	s.dirty = false
	s.mu.Unlock()
}

func (s *editorService) Active() (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return models.Project{}, false
	}
	return s.active.Clone(), true
}

// SaveLocal stamps and persists the active project. The dirty flag tracks
// unpushed changes and is left alone.
func (s *editorService) SaveLocal(ctx context.Context) error {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return ErrNoActiveProject
	}
	s.active.Metadata.UpdatedAt = time.Now().UTC()
	p := s.active.Clone()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, &p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (s *editorService) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.edits++
	s.mu.Unlock()
}

func (s *editorService) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Tracks returns the tracks of the current scene.
func (s *editorService) Tracks() []models.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	scene := s.active.CurrentScene()
	if scene == nil {
		return nil
	}
	return models.Project{Scenes: []models.Scene{*scene}}.Clone().Scenes[0].Tracks
}

func (s *editorService) DeleteElements(refs []media.ElementRef) {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return
	}
	scene := s.active.CurrentScene()
	if scene == nil {
		s.mu.Unlock()
		return
	}
	for i := range scene.Tracks {
		t := &scene.Tracks[i]
		t.Elements = slices.DeleteFunc(t.Elements, func(e models.Element) bool {
			return slices.Contains(refs, media.ElementRef{TrackID: t.ID, ElementID: e.ID})
		})
	}
	s.mu.Unlock()
	s.MarkDirty()
}

// AddMediaElement places asset on the first track of its kind in the current
// scene, creating the track if needed. If the slot at start is taken the
// element goes after the last one.
func (s *editorService) AddMediaElement(asset models.MediaAsset, start float64) (models.Element, error) {
	elemType, trackType := elementTypes(asset.Type)
	duration := asset.Duration
	if duration <= 0 {
		duration = defaultElementDuration
	}

	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return models.Element{}, ErrNoActiveProject
	}
	scene := s.active.CurrentScene()
	if scene == nil {
		s.mu.Unlock()
		return models.Element{}, ErrNoActiveProject
	}

	i := slices.IndexFunc(scene.Tracks, func(t models.Track) bool { return t.Type == trackType })
	if i < 0 {
		scene.Tracks = append(scene.Tracks, models.Track{
			ID:       uuid.NewString(),
			Name:     string(trackType),
			Type:     trackType,
			Elements: []models.Element{},
		})
		i = len(scene.Tracks) - 1
	}
	track := &scene.Tracks[i]

	if timeline.WouldElementOverlap(track.Elements, start, start+duration, "") {
		start = 0
		for _, e := range track.Elements {
			start = max(start, e.EndTime())
		}
	}

	e := models.Element{
		ID:        uuid.NewString(),
		Type:      elemType,
		Name:      asset.Name,
		StartTime: start,
		Duration:  duration,
		MediaID:   asset.ID,
	}
	if elemType == models.ElementAudio {
		e.SourceType = models.SourceUpload
	}
	track.Elements = append(track.Elements, e)
	s.active.Metadata.Duration = max(s.active.Metadata.Duration, e.EndTime())
	s.mu.Unlock()

	s.MarkDirty()
	return e, nil
}

func elementTypes(t models.MediaType) (models.ElementType, models.TrackType) {
	switch t {
	case models.MediaAudio:
		return models.ElementAudio, models.TrackAudio
	case models.MediaImage:
		return models.ElementImage, models.TrackVideo
	default:
		return models.ElementVideo, models.TrackVideo
	}
}

// PushToCloud writes the active project with its local version as the base.
// On success the local version becomes the server's and the project is
// persisted. A stale base yields *api.ConflictError and changes nothing.
func (s *editorService) PushToCloud(ctx context.Context) (*models.PutEditorProjectResponse, error) {
	p, edits, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return s.push(ctx, p, edits, p.Version)
}

// ResolveConflictOverwrite pushes the local project again on top of the
// server's version, replacing the server copy. The local version only
// changes once the server accepts the write.
func (s *editorService) ResolveConflictOverwrite(ctx context.Context, conflict *api.ConflictError) (*models.PutEditorProjectResponse, error) {
	p, edits, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return s.push(ctx, p, edits, p.Version)
	}
	return s.push(ctx, p, edits, conflict.ServerVersion)
}

func (s *editorService) snapshot() (models.Project, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return models.Project{}, 0, ErrNoActiveProject
	}
	return s.active.Clone(), s.edits, nil
}

// push sends p with baseVersion. Version is written back only from the
// server's response.
func (s *editorService) push(ctx context.Context, p models.Project, edits uint64, baseVersion int) (*models.PutEditorProjectResponse, error) {
	state, err := mapper.BuildEditorProjectState(p)
	if err != nil {
		return nil, fmt.Errorf("failed to build project state: %w", err)
	}

	req := models.PutEditorProjectRequest{
		Name:            p.Metadata.Name,
		BaseVersion:     baseVersion,
		State:           state,
		AssetFileIDs:    mapper.ExtractCloudAssetFileIDsForTimeline(p, s.assets.Assets()),
		ClientRequestID: uuid.NewString(),
	}

	resp, err := s.api.PutProject(ctx, p.Metadata.ID, req)
	if err != nil {
		if conflict, ok := api.IsConflict(err); ok {
			s.log.Warn(ctx, "project version conflict", "project_id", p.Metadata.ID,
				"base_version", baseVersion, "server_version", conflict.ServerVersion)
		}
		return nil, err
	}

	s.mu.Lock()
	if s.active == nil || s.active.Metadata.ID != p.Metadata.ID {
		s.mu.Unlock()
		return resp, nil
	}
	s.active.Version = resp.Version
	if s.edits == edits {
		s.dirty = false
	}
	saved := s.active.Clone()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, &saved); err != nil {
		return resp, fmt.Errorf("failed to save project: %w", err)
	}
	s.log.Info(ctx, "project pushed", "project_id", p.Metadata.ID, "version", resp.Version)
	return resp, nil
}

// PullFromCloud replaces the local copy of id with the server's and makes it
// active.
func (s *editorService) PullFromCloud(ctx context.Context, id string) (models.Project, error) {
	resp, err := s.api.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	p, err := mapper.BuildLocalProjectFromCloudState(resp.ID, resp.Version, resp.State, resp.UpdatedAt, resp.CreatedAt)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to read cloud project: %w", err)
	}
	if err := s.repo.Save(ctx, &p); err != nil {
		return models.Project{}, fmt.Errorf("failed to save project: %w", err)
	}
	s.setActive(p)
	return p, nil
}

func (s *editorService) ListCloudProjects(ctx context.Context, p api.ListProjectsParams) (*models.ListEditorProjectsResponse, error) {
	return s.api.ListProjects(ctx, p)
}

func (s *editorService) ListLocalProjects(ctx context.Context) ([]models.Project, error) {
	return s.repo.List(ctx)
}

func (s *editorService) DeleteCloudProject(ctx context.Context, id string) error {
	return s.api.DeleteProject(ctx, id)
}
