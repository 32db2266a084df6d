// Package kvtest builds throwaway kv stores for tests.
package kvtest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/migrations"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// NewSQLite opens a private in-memory SQLite database with the embedded
// migrations applied and returns it together with a repository over it.
func NewSQLite(t testing.TB) (*kv.SQLiteRepository, *sql.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	require.NoError(t, err)
	_, err = provider.Up(context.Background())
	require.NoError(t, err)

	return kv.NewSQLiteRepository(db), db
}
