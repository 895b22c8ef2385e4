package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FeedMeta caches conditional-GET validators per feed.
type FeedMeta struct {
	FeedURL      string
	ETag         string
	LastModified string
	LastStatus   int
	FetchedAt    time.Time
}

// SeenCount returns how many item keys have been recorded for the feed.
// A zero count marks a feed's first sighting; the relay seeds without posting.
func (s *Store) SeenCount(ctx context.Context, feedURL string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM feed_seen WHERE feed_url = ?", feedURL,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count seen items: %w", err)
	}
	return count, nil
}

// IsSeen reports whether the item key has been recorded.
func (s *Store) IsSeen(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM feed_seen WHERE key = ?", key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check seen item: %w", err)
	}
	return true, nil
}

// MarkSeen records item keys for a feed. Existing keys are left untouched.
func (s *Store) MarkSeen(ctx context.Context, feedURL string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seen tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO feed_seen (key, feed_url, first_seen_at) VALUES (?, ?, ?)",
			key, feedURL, now,
		); err != nil {
			return fmt.Errorf("mark seen: %w", err)
		}
	}
	return tx.Commit()
}

// GetFeedMeta returns cached validators for a feed, zero-valued when absent.
func (s *Store) GetFeedMeta(ctx context.Context, feedURL string) (FeedMeta, error) {
	meta := FeedMeta{FeedURL: feedURL}
	var etag, lastModified, fetchedAt sql.NullString
	var lastStatus sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT etag, last_modified, last_status, fetched_at FROM feed_meta WHERE feed_url = ?",
		feedURL,
	).Scan(&etag, &lastModified, &lastStatus, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("read feed meta: %w", err)
	}
	meta.ETag = etag.String
	meta.LastModified = lastModified.String
	meta.LastStatus = int(lastStatus.Int64)
	if at, ok := parseTime(fetchedAt); ok {
		meta.FetchedAt = at
	}
	return meta, nil
}

// SaveFeedMeta upserts validators for a feed.
func (s *Store) SaveFeedMeta(ctx context.Context, meta FeedMeta) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feed_meta (feed_url, etag, last_modified, last_status, fetched_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(feed_url) DO UPDATE SET
             etag = excluded.etag,
             last_modified = excluded.last_modified,
             last_status = excluded.last_status,
             fetched_at = excluded.fetched_at`,
		meta.FeedURL,
		nullableString(meta.ETag),
		nullableString(meta.LastModified),
		meta.LastStatus,
		formatTime(meta.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("save feed meta: %w", err)
	}
	return nil
}

// TotalSeen returns the number of recorded item keys across all feeds.
func (s *Store) TotalSeen(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM feed_seen").Scan(&count); err != nil {
		return 0, fmt.Errorf("count seen items: %w", err)
	}
	return count, nil
}
