package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) (*KVRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE kv (bucket TEXT NOT NULL, key TEXT NOT NULL, value BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, PRIMARY KEY (bucket, key))`)
	require.NoError(t, err)
	return NewKVRepository(kv.NewSQLiteRepository(db)), db
}

func TestKVRepository(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()

	v, err := r.Get(ctx, "opencut_workspace_id")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Set(ctx, "opencut_workspace_id", []byte("ws-1")))
	require.NoError(t, r.Set(ctx, KeyLastProjectID, []byte("p1")))

	v, err = r.Get(ctx, "opencut_workspace_id")
	require.NoError(t, err)
	assert.Equal(t, []byte("ws-1"), v)

	var bucket string
	require.NoError(t, db.QueryRow(`SELECT bucket FROM kv WHERE key = 'opencut_workspace_id'`).Scan(&bucket))
	assert.Equal(t, Bucket, bucket)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)

	require.NoError(t, r.Delete(ctx, KeyLastProjectID))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 1)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}
