package media

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
)

// BucketPrefix is followed by the project id.
const BucketPrefix = "media:"

func bucket(projectID string) string {
	return BucketPrefix + projectID
}

type KVRepository struct {
	store kv.Repository
}

func NewKVRepository(store kv.Repository) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Save(ctx context.Context, projectID string, a models.MediaAsset) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode media %s: %w", a.ID, err)
	}
	return r.store.Set(ctx, bucket(projectID), a.ID, raw)
}

func (r *KVRepository) Get(ctx context.Context, projectID, id string) (*models.MediaAsset, error) {
	raw, err := r.store.Get(ctx, bucket(projectID), id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("media %s: %w", id, common.ErrorNotFound)
	}

	var a models.MediaAsset
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to decode media %s: %w", id, err)
	}
	return &a, nil
}

func (r *KVRepository) List(ctx context.Context, projectID string) ([]models.MediaAsset, error) {
	all, err := r.store.List(ctx, bucket(projectID))
	if err != nil {
		return nil, err
	}

	out := make([]models.MediaAsset, 0, len(all))
	for id, raw := range all {
		var a models.MediaAsset
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("failed to decode media %s: %w", id, err)
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *KVRepository) Delete(ctx context.Context, projectID, id string) error {
	return r.store.Delete(ctx, bucket(projectID), id)
}

func (r *KVRepository) Clear(ctx context.Context, projectID string) error {
	return r.store.Clear(ctx, bucket(projectID))
}

func (r *KVRepository) ClearAll(ctx context.Context) error {
	buckets, err := r.store.Buckets(ctx, BucketPrefix)
	if err != nil {
		return err
	}
	for _, b := range buckets {
		if err := r.store.Clear(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
