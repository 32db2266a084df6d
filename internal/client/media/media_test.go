package media

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api/apitest"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv/kvtest"
	mediarepo "github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/session"
	"github.com/stretchr/testify/require"
)

const testProject = "proj-1"

type fakeEditor struct {
	mu      sync.Mutex
	dirty   int
	tracks  []models.Track
	deleted []ElementRef
}

func (e *fakeEditor) MarkDirty() {
	e.mu.Lock()
	e.dirty++
	e.mu.Unlock()
}

func (e *fakeEditor) Tracks() []models.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracks
}

func (e *fakeEditor) DeleteElements(refs []ElementRef) {
	e.mu.Lock()
	e.deleted = append(e.deleted, refs...)
	e.mu.Unlock()
}

func (e *fakeEditor) dirtyCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// failingRepo wraps a repository and fails Save when failSave is set.
type failingRepo struct {
	mediarepo.Repository
	failSave bool
}

func (r *failingRepo) Save(ctx context.Context, projectID string, a models.MediaAsset) error {
	if r.failSave {
		return errors.New("disk full")
	}
	return r.Repository.Save(ctx, projectID, a)
}

type harness struct {
	srv    *apitest.Server
	sess   *session.Session
	repo   *failingRepo
	editor *fakeEditor
	m      *Manager
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	ctx := context.Background()

	srv := apitest.New(t)
	sess := session.New(nil)
	sess.SetToken(srv.IssueToken())
	require.NoError(t, sess.SetWorkspaceID(ctx, apitest.DefaultWorkspace.ID))

	client, err := api.New(srv.BaseURL(), sess)
	require.NoError(t, err)

	store, _ := kvtest.NewSQLite(t)
	repo := &failingRepo{Repository: mediarepo.NewKVRepository(store)}

	editor := &fakeEditor{}
	m := NewManager(repo, client, sess, opts...)
	m.Attach(editor)

	return &harness{srv: srv, sess: sess, repo: repo, editor: editor, m: m}
}

func clip(name string, data string) models.MediaAsset {
	return models.MediaAsset{
		Name:        name,
		Type:        models.MediaVideo,
		ContentType: "video/mp4",
		Data:        []byte(data),
	}
}
