package kv

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  bucket     TEXT NOT NULL,
  key        TEXT NOT NULL,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (bucket, key)
);`)
	require.NoError(t, err)
	return db
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// Both implementations must satisfy the same contract.
func implementations(t *testing.T) map[string]Repository {
	client, _ := setupRedis(t)
	return map[string]Repository{
		"sqlite": NewSQLiteRepository(setupDB(t)),
		"redis":  NewRedisRepository(client, ""),
	}
}

func TestRepository_Contract(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("get missing is nil, nil", func(t *testing.T) {
				v, err := repo.Get(ctx, "projects", "absent")
				require.NoError(t, err)
				assert.Nil(t, v)
			})

			t.Run("set then get, upsert overwrites", func(t *testing.T) {
				require.NoError(t, repo.Set(ctx, "projects", "p1", []byte(`{"v":1}`)))
				require.NoError(t, repo.Set(ctx, "projects", "p1", []byte(`{"v":2}`)))

				v, err := repo.Get(ctx, "projects", "p1")
				require.NoError(t, err)
				assert.Equal(t, []byte(`{"v":2}`), v)
			})

			t.Run("buckets are isolated", func(t *testing.T) {
				require.NoError(t, repo.Set(ctx, "media:p1", "m1", []byte("a")))
				require.NoError(t, repo.Set(ctx, "media:p1", "m2", []byte("b")))
				require.NoError(t, repo.Set(ctx, "media:p2", "m1", []byte("c")))

				m, err := repo.List(ctx, "media:p1")
				require.NoError(t, err)
				assert.Equal(t, map[string][]byte{"m1": []byte("a"), "m2": []byte("b")}, m)

				v, err := repo.Get(ctx, "media:p2", "m1")
				require.NoError(t, err)
				assert.Equal(t, []byte("c"), v)
			})

			t.Run("buckets by prefix", func(t *testing.T) {
				got, err := repo.Buckets(ctx, "media:")
				require.NoError(t, err)
				assert.Equal(t, []string{"media:p1", "media:p2"}, got)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				require.NoError(t, repo.Delete(ctx, "media:p1", "m1"))
				require.NoError(t, repo.Delete(ctx, "media:p1", "m1"))

				v, err := repo.Get(ctx, "media:p1", "m1")
				require.NoError(t, err)
				assert.Nil(t, v)
			})

			t.Run("clear empties only that bucket", func(t *testing.T) {
				require.NoError(t, repo.Clear(ctx, "media:p1"))

				m, err := repo.List(ctx, "media:p1")
				require.NoError(t, err)
				assert.Empty(t, m)

				m, err = repo.List(ctx, "media:p2")
				require.NoError(t, err)
				assert.Len(t, m, 1)

				got, err := repo.Buckets(ctx, "media:")
				require.NoError(t, err)
				assert.Equal(t, []string{"media:p2"}, got)
			})
		})
	}
}

func TestSQLiteRepository_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "projects", "k")
	require.ErrorContains(t, err, "failed to get projects[k]")

	require.ErrorContains(t, r.Set(ctx, "projects", "k", []byte("v")), "failed to set projects[k]")
	require.ErrorContains(t, r.Delete(ctx, "projects", "k"), "failed to delete projects[k]")
	require.ErrorContains(t, r.Clear(ctx, "projects"), "failed to clear projects")

	_, err = r.List(ctx, "projects")
	require.ErrorContains(t, err, "failed to list projects")

	_, err = r.Buckets(ctx, "")
	require.ErrorContains(t, err, "failed to list buckets")
}

func TestRedisRepository_UsesNamespacedHashes(t *testing.T) {
	client, mr := setupRedis(t)
	r := NewRedisRepository(client, "test:")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "metadata", "opencut_workspace_id", []byte("ws-1")))

	assert.Equal(t, "ws-1", mr.HGet("test:metadata", "opencut_workspace_id"))
	assert.True(t, mr.Exists("test:metadata"))
}
