package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api/apitest"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv/kvtest"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/projects"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/session"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAssets []models.MediaAsset

func (s staticAssets) Assets() []models.MediaAsset { return s }

type editorFixture struct {
	srv  *apitest.Server
	sess *session.Session
	repo *projects.KVRepository
	svc  EditorService
}

func newEditor(t *testing.T, assets staticAssets) *editorFixture {
	t.Helper()
	ctx := context.Background()

	srv := apitest.New(t)
	sess := session.New(nil)
	sess.SetToken(srv.IssueToken())
	require.NoError(t, sess.SetWorkspaceID(ctx, apitest.DefaultWorkspace.ID))

	c, err := api.New(srv.BaseURL(), sess)
	require.NoError(t, err)

	store, _ := kvtest.NewSQLite(t)
	repo := projects.NewKVRepository(store)

	return &editorFixture{
		srv:  srv,
		sess: sess,
		repo: repo,
		svc:  NewEditorService(c, repo, assets, sess, logging.Discard()),
	}
}

func TestEditorService_CreateAndOpen(t *testing.T) {
	f := newEditor(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreateProject(ctx, "Trailer")
	require.NoError(t, err)
	assert.Equal(t, "Trailer", p.Metadata.Name)
	assert.Zero(t, p.Version)
	require.Len(t, p.Scenes, 1)
	assert.True(t, p.Scenes[0].IsMain)
	assert.Equal(t, p.Scenes[0].ID, p.CurrentSceneID)
	assert.Equal(t, 30, p.Settings.FPS)

	f.svc.CloseProject()
	_, ok := f.svc.Active()
	assert.False(t, ok)

	opened, err := f.svc.OpenProject(ctx, p.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Metadata.ID, opened.Metadata.ID)
	assert.False(t, f.svc.IsDirty())

	local, err := f.svc.ListLocalProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, local, 1)
}

func TestEditorService_OpenMissingProject(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		f := newEditor(t, nil)
		f.sess.Clear()

		_, err := f.svc.OpenProject(context.Background(), "nope")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.Zero(t, f.srv.TotalHits())
	})

	t.Run("pulled from cloud", func(t *testing.T) {
		f := newEditor(t, nil)
		id := uuid.NewString()
		f.srv.SeedProject(models.GetEditorProjectResponse{
			ID:          id,
			WorkspaceID: apitest.DefaultWorkspace.ID,
			Name:        "Cloud Synced Project",
			Version:     3,
			UpdatedAt:   "2026-02-09T12:00:00.000Z",
			CreatedAt:   "2026-02-08T12:00:00.000Z",
			State: models.EditorProjectState{
				SchemaVersion:  3,
				CurrentSceneID: "scene-main",
				Metadata:       models.EditorStateMetadata{ID: id, Name: "Cloud Synced Project"},
				Settings:       map[string]any{"fps": 30},
				Scenes: []map[string]any{{
					"id": "scene-main", "name": "Main scene", "isMain": true,
					"bookmarks": []any{}, "tracks": []any{},
				}},
			},
		})

		p, err := f.svc.OpenProject(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Cloud Synced Project", p.Metadata.Name)
		assert.Equal(t, 3, p.Version)

		stored, err := f.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Version)
	})
}

func TestEditorService_PushToCloud(t *testing.T) {
	assets := staticAssets{
		{ID: "m1", Sync: models.Synced{CloudFileID: "file-1", CloudFileKey: "k1"}},
		{ID: "m2", Sync: models.Synced{CloudFileID: "file-2", CloudFileKey: "k2"}},
		{ID: "m3", Sync: models.LocalOnly{}},
	}
	f := newEditor(t, assets)
	ctx := context.Background()

	_, err := f.svc.PushToCloud(ctx)
	require.ErrorIs(t, err, ErrNoActiveProject)

	p, err := f.svc.CreateProject(ctx, "Trailer")
	require.NoError(t, err)
	_, err = f.svc.AddMediaElement(assets[0], 0)
	require.NoError(t, err)
	_, err = f.svc.AddMediaElement(assets[2], 0)
	require.NoError(t, err)
	assert.True(t, f.svc.IsDirty())

	resp, err := f.svc.PushToCloud(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Version)
	assert.False(t, f.svc.IsDirty())

	put, ok := f.srv.LastPut()
	require.True(t, ok)
	assert.Equal(t, 0, put.BaseVersion)
	assert.Equal(t, []string{"file-1"}, put.AssetFileIDs)
	assert.Equal(t, "Trailer", put.Name)
	_, err = uuid.Parse(put.ClientRequestID)
	assert.NoError(t, err)

	stored, err := f.repo.Get(ctx, p.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)

	resp, err = f.svc.PushToCloud(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Version)
	put, _ = f.srv.LastPut()
	assert.Equal(t, 1, put.BaseVersion)
}

func TestEditorService_ConflictAndOverwrite(t *testing.T) {
	f := newEditor(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreateProject(ctx, "Shared")
	require.NoError(t, err)
	_, err = f.svc.PushToCloud(ctx)
	require.NoError(t, err)

	server, ok := f.srv.Project(p.Metadata.ID)
	require.True(t, ok)
	server.Version = 5
	f.srv.SeedProject(server)

	f.svc.MarkDirty()
	_, err = f.svc.PushToCloud(ctx)
	conflict, ok := api.IsConflict(err)
	require.True(t, ok)
	assert.Equal(t, 5, conflict.ServerVersion)
	assert.True(t, f.svc.IsDirty())

	active, _ := f.svc.Active()
	assert.Equal(t, 1, active.Version)

	resp, err := f.svc.ResolveConflictOverwrite(ctx, conflict)
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Version)
	put, _ := f.srv.LastPut()
	assert.Equal(t, 5, put.BaseVersion)
	active, _ = f.svc.Active()
	assert.Equal(t, 6, active.Version)
	assert.False(t, f.svc.IsDirty())
}

func TestEditorService_FailedOverwriteKeepsVersion(t *testing.T) {
	f := newEditor(t, nil)
	ctx := context.Background()

	p, err := f.svc.CreateProject(ctx, "Offline")
	require.NoError(t, err)
	require.Equal(t, 0, p.Version)

	f.srv.FailNext(apitest.RoutePutProject, http.StatusInternalServerError, map[string]any{"message": "boom"})

	_, err = f.svc.ResolveConflictOverwrite(ctx, &api.ConflictError{ServerVersion: 7})
	require.Error(t, err)
	assert.Equal(t, api.KindRequestFailed, api.Classify(err))

	active, _ := f.svc.Active()
	assert.Equal(t, 0, active.Version)

	require.NoError(t, f.svc.SaveLocal(ctx))
	stored, err := f.repo.Get(ctx, p.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Version)
}

func TestEditorService_DeleteElementsAndTracks(t *testing.T) {
	f := newEditor(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, "Cuts")
	require.NoError(t, err)

	first, err := f.svc.AddMediaElement(models.MediaAsset{ID: "m1", Type: models.MediaVideo, Duration: 4}, 0)
	require.NoError(t, err)
	second, err := f.svc.AddMediaElement(models.MediaAsset{ID: "m2", Type: models.MediaVideo}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, second.StartTime, "overlapping start moves to the end of the track")

	audio, err := f.svc.AddMediaElement(models.MediaAsset{ID: "m3", Type: models.MediaAudio}, 0)
	require.NoError(t, err)
	assert.Equal(t, models.SourceUpload, audio.SourceType)

	tracks := f.svc.Tracks()
	require.Len(t, tracks, 2)
	assert.Len(t, tracks[0].Elements, 2)

	f.svc.DeleteElements([]media.ElementRef{{TrackID: tracks[0].ID, ElementID: first.ID}})

	tracks = f.svc.Tracks()
	require.Len(t, tracks[0].Elements, 1)
	assert.Equal(t, second.ID, tracks[0].Elements[0].ID)
}

func TestEditorService_CloudListing(t *testing.T) {
	f := newEditor(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, "One")
	require.NoError(t, err)
	_, err = f.svc.PushToCloud(ctx)
	require.NoError(t, err)
	p, _ := f.svc.Active()

	list, err := f.svc.ListCloudProjects(ctx, api.ListProjectsParams{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "One", list.Items[0].Name)

	require.NoError(t, f.svc.DeleteCloudProject(ctx, p.Metadata.ID))
	list, err = f.svc.ListCloudProjects(ctx, api.ListProjectsParams{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestEditorService_SaveLocal(t *testing.T) {
	f := newEditor(t, nil)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.SaveLocal(ctx), ErrNoActiveProject)

	p, err := f.svc.CreateProject(ctx, "Draft")
	require.NoError(t, err)
	_, err = f.svc.AddMediaElement(models.MediaAsset{ID: "m1", Type: models.MediaImage}, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveLocal(ctx))

	stored, err := f.repo.Get(ctx, p.Metadata.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Scenes[0].Tracks[0].Elements, 1)
	assert.True(t, f.svc.IsDirty())
}
