package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisNamespace prefixes every hash written by RedisRepository.
const DefaultRedisNamespace = "vibecut:"

// RedisRepository keeps each bucket in a hash named namespace+bucket.
type RedisRepository struct {
	client    redis.Cmdable
	namespace string
}

func NewRedisRepository(client redis.Cmdable, namespace string) *RedisRepository {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisRepository{client: client, namespace: namespace}
}

func (r *RedisRepository) hash(bucket string) string {
	return r.namespace + bucket
}

func (r *RedisRepository) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	v, err := r.client.HGet(ctx, r.hash(bucket), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", bucket, key, err)
	}
	return v, nil
}

func (r *RedisRepository) Set(ctx context.Context, bucket, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.hash(bucket), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s[%s]: %w", bucket, key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, bucket, key string) error {
	if err := r.client.HDel(ctx, r.hash(bucket), key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", bucket, key, err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, bucket string) (map[string][]byte, error) {
	m, err := r.client.HGetAll(ctx, r.hash(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", bucket, err)
	}
	result := make(map[string][]byte, len(m))
	for k, v := range m {
		result[k] = []byte(v)
	}
	return result, nil
}

func (r *RedisRepository) Clear(ctx context.Context, bucket string) error {
	if err := r.client.Del(ctx, r.hash(bucket)).Err(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", bucket, err)
	}
	return nil
}

func (r *RedisRepository) Buckets(ctx context.Context, prefix string) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	pattern := r.namespace + prefix + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		for _, k := range keys {
			out = append(out, strings.TrimPrefix(k, r.namespace))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(out)
	return out, nil
}
