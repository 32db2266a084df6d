package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/repositories/kv"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
)

const Bucket = "projects"

var ErrMissingID = errors.New("project has no id")

type KVRepository struct {
	store kv.Repository
}

func NewKVRepository(store kv.Repository) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	raw, err := r.store.Get(ctx, Bucket, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("project %s: %w", id, common.ErrorNotFound)
	}

	var p models.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return &p, nil
}

func (r *KVRepository) Save(ctx context.Context, p *models.Project) error {
	if p.Metadata.ID == "" {
		return ErrMissingID
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project %s: %w", p.Metadata.ID, err)
	}
	return r.store.Set(ctx, Bucket, p.Metadata.ID, raw)
}

func (r *KVRepository) List(ctx context.Context) ([]models.Project, error) {
	all, err := r.store.List(ctx, Bucket)
	if err != nil {
		return nil, err
	}

	out := make([]models.Project, 0, len(all))
	for id, raw := range all {
		var p models.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Metadata.UpdatedAt.Equal(out[j].Metadata.UpdatedAt) {
			return out[i].Metadata.UpdatedAt.After(out[j].Metadata.UpdatedAt)
		}
		return out[i].Metadata.ID < out[j].Metadata.ID
	})
	return out, nil
}

func (r *KVRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Bucket, id)
}

func (r *KVRepository) Records(ctx context.Context) ([]Record, error) {
	all, err := r.store.List(ctx, Bucket)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		var rec Record
		if err := json.Unmarshal(all[k], &rec); err != nil {
			// not an object (or not JSON at all); nothing a migration can use
			continue
		}
		if rec == nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *KVRepository) PutRecord(ctx context.Context, id string, rec Record) error {
	if id == "" {
		return ErrMissingID
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode project record %s: %w", id, err)
	}
	return r.store.Set(ctx, Bucket, id, raw)
}
