package metadata

import (
	"context"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv"
)

// Bucket is the kv bucket holding metadata entries.
const Bucket = "metadata"

// Well-known keys.
const (
	KeyLastProjectID = "last_project_id"
)

type KVRepository struct {
	store kv.Repository
}

func NewKVRepository(store kv.Repository) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return r.store.Get(ctx, Bucket, key)
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.store.Set(ctx, Bucket, key, value)
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, Bucket, key)
}

func (r *KVRepository) List(ctx context.Context) (map[string][]byte, error) {
	return r.store.List(ctx, Bucket)
}

func (r *KVRepository) Clear(ctx context.Context) error {
	return r.store.Clear(ctx, Bucket)
}
