package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := New(dir, Options{
		Debounce: 20 * time.Millisecond,
		Filter:   Filter{Ignore: DefaultIgnore},
	}, logging.Discard())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.mp4"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("x"), 0o600))

	ev := next(t, w.Events())
	assert.Equal(t, "clip.mp4", ev.Path)
	assert.Equal(t, OpCreate, ev.Op)

	sub := filepath.Join(dir, "shots")
	require.NoError(t, os.Mkdir(sub, 0o700))
	// the new directory is watched asynchronously
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(sub, "take.png"), []byte("y"), 0o600)
		select {
		case ev = <-w.Events():
			return ev.Path == "shots/take.png"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(t.TempDir(), Options{}, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))

	cancel()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.NoError(t, w.Close())
}

func TestNew_RejectsFiles(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o600))

	_, err := New(f, Options{}, logging.Discard())
	assert.Error(t, err)
}
