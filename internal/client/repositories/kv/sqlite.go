package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ReloopAI/vibecut-frontend-2/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE bucket = ? AND key = ?`, bucket, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s[%s]: %w", bucket, key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, bucket, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (bucket, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(bucket, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, bucket, key, value)
	if err != nil {
		return fmt.Errorf("failed to set %s[%s]: %w", bucket, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, bucket, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s[%s]: %w", bucket, key, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, bucket string) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE bucket = ?`, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", bucket, err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", bucket, err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", bucket, err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, bucket string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE bucket = ?`, bucket)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", bucket, err)
	}
	return nil
}

func (r *SQLiteRepository) Buckets(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT bucket FROM kv WHERE substr(bucket, 1, ?) = ? ORDER BY bucket`,
		len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		if strings.HasPrefix(b, prefix) {
			out = append(out, b)
		}
	}
	return out, rows.Err()
}
