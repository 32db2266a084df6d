// Package kv is the local keyed store: opaque values grouped in buckets and
// addressed by key. It backs the project, media and metadata stores.
//
// Two implementations are provided: SQLiteRepository over dbx.DBTX (the
// default, one file in the data directory) and RedisRepository, which keeps
// each bucket in a Redis hash.
//
// Typical usage
//
//	repo := kv.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "projects", id, raw)
//	raw, _ := repo.Get(ctx, "projects", id) // nil, nil when absent
//	all, _ := repo.List(ctx, "projects")
package kv
