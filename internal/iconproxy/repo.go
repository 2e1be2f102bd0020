package iconproxy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entry is the index row of one icon stored on disk.
type Entry struct {
	Key         string
	URL         string
	File        string
	SHA256      string
	ContentType string
	Size        int64
	Width       int
	Height      int
	FetchedAt   time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Get(ctx context.Context, key string) (*Entry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT key, url, file, sha256, content_type, size, width, height, fetched_at
		FROM icon_cache
		WHERE key = ?
	`, key)

	var e Entry
	if err := row.Scan(
		&e.Key, &e.URL, &e.File, &e.SHA256, &e.ContentType, &e.Size, &e.Width, &e.Height, &e.FetchedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan icon %s: %w", key, err)
	}
	return &e, nil
}

func (r *Repo) Upsert(ctx context.Context, e Entry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO icon_cache (key, url, file, sha256, content_type, size, width, height, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		  url = excluded.url,
		  file = excluded.file,
		  sha256 = excluded.sha256,
		  content_type = excluded.content_type,
		  size = excluded.size,
		  width = excluded.width,
		  height = excluded.height,
		  fetched_at = excluded.fetched_at
	`, e.Key, e.URL, e.File, e.SHA256, e.ContentType, e.Size, e.Width, e.Height, e.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert icon %s: %w", e.Key, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM icon_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete icon %s: %w", key, err)
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM icon_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count icons: %w", err)
	}
	return n, nil
}
