package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// WindowRecord is the persisted sync window singleton.
type WindowRecord struct {
	Active    bool
	OpenedAt  time.Time
	ExpiresAt time.Time
}

// SyncWindow reads the current window. A missing row means no window has ever
// been opened.
func (s *Store) SyncWindow(ctx context.Context) (WindowRecord, error) {
	var active int
	var openedAt, expiresAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT active, opened_at, expires_at FROM sync_window WHERE id = 1",
	).Scan(&active, &openedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return WindowRecord{}, nil
	}
	if err != nil {
		return WindowRecord{}, fmt.Errorf("read sync window: %w", err)
	}

	record := WindowRecord{Active: active != 0}
	if at, ok := parseTime(openedAt); ok {
		record.OpenedAt = at
	}
	if at, ok := parseTime(expiresAt); ok {
		record.ExpiresAt = at
	}
	return record, nil
}

// SaveSyncWindow upserts the window singleton.
func (s *Store) SaveSyncWindow(ctx context.Context, record WindowRecord) error {
	var openedAt, expiresAt any
	if !record.OpenedAt.IsZero() {
		openedAt = formatTime(record.OpenedAt)
	}
	if !record.ExpiresAt.IsZero() {
		expiresAt = formatTime(record.ExpiresAt)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_window (id, active, opened_at, expires_at) VALUES (1, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET active = excluded.active, opened_at = excluded.opened_at, expires_at = excluded.expires_at`,
		boolInt(record.Active), openedAt, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save sync window: %w", err)
	}
	return nil
}
