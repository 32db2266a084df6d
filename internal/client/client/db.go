package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/config"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/migrations"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/metadata"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/projects"
	"github.com/ReloopAI/vibecut-frontend-2/internal/filex"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// Stores groups the repositories of the local store.
type Stores struct {
	KV       kv.Repository
	Projects projects.Repository
	Media    media.Repository
	Metadata metadata.Repository

	closer io.Closer
}

// NewStores wires the typed repositories over store.
func NewStores(store kv.Repository, closer io.Closer) *Stores {
	return &Stores{
		KV:       store,
		Projects: projects.NewKVRepository(store),
		Media:    media.NewKVRepository(store),
		Metadata: metadata.NewKVRepository(store),
		closer:   closer,
	}
}

// Close releases the underlying database or Redis connection.
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenStores opens the store backend selected by cfg.Store.Driver.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		db, err := InitDatabase(ctx, cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		return NewStores(kv.NewSQLiteRepository(db), db), nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr, DB: cfg.Store.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Store.RedisAddr, err)
		}
		return NewStores(kv.NewRedisRepository(rdb, kv.DefaultRedisNamespace), rdb), nil

	default:
		return nil, errors.New("unknown store driver: " + cfg.Store.Driver)
	}
}
