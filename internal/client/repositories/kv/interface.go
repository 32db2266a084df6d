package kv

import "context"

// Repository is a bucketed key/value store.
type Repository interface {
	// Get returns the value stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Set inserts or replaces the value under key.
	Set(ctx context.Context, bucket, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// List returns every key/value pair of bucket.
	List(ctx context.Context, bucket string) (map[string][]byte, error)

	// Clear removes every key of bucket.
	Clear(ctx context.Context, bucket string) error

	// Buckets returns the names of non-empty buckets starting with prefix.
	Buckets(ctx context.Context, prefix string) ([]string, error)
}
