package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrStateCorrupt indicates the persisted rotation cursor could not be read.
// Callers recover by resetting the cursor to zero.
var ErrStateCorrupt = errors.New("rotation state corrupt")

// Cursor is the persisted rotation position.
type Cursor struct {
	Index         int
	LastRotatedAt time.Time
}

// HistoryEntry records one rotation attempt.
type HistoryEntry struct {
	RunID      string
	RotatedAt  time.Time
	Stopped    string
	Started    string
	Cursor     int
	Suppressed bool
	StopError  string
	StartError string
}

// RotationCursor reads the persisted cursor. A missing row yields the zero
// cursor (first run). An unreadable row returns ErrStateCorrupt.
func (s *Store) RotationCursor(ctx context.Context) (Cursor, error) {
	var index sql.NullInt64
	var rotatedAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT cursor, last_rotated_at FROM rotation_state WHERE id = 1",
	).Scan(&index, &rotatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Cursor{}, nil
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("read rotation cursor: %w", err)
	}
	if !index.Valid {
		return Cursor{}, ErrStateCorrupt
	}

	cursor := Cursor{Index: int(index.Int64)}
	if at, ok := parseTime(rotatedAt); ok {
		cursor.LastRotatedAt = at
	}
	return cursor, nil
}

// SaveRotationCursor upserts the cursor singleton.
func (s *Store) SaveRotationCursor(ctx context.Context, index int, rotatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rotation_state (id, cursor, last_rotated_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET cursor = excluded.cursor, last_rotated_at = excluded.last_rotated_at`,
		index, formatTime(rotatedAt),
	)
	if err != nil {
		return fmt.Errorf("save rotation cursor: %w", err)
	}
	return nil
}

// ResetRotation clears the cursor back to index zero.
func (s *Store) ResetRotation(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rotation_state (id, cursor, last_rotated_at) VALUES (1, 0, NULL)
         ON CONFLICT(id) DO UPDATE SET cursor = 0, last_rotated_at = NULL`,
	)
	if err != nil {
		return fmt.Errorf("reset rotation state: %w", err)
	}
	return nil
}

// AppendRotationHistory journals one rotation attempt.
func (s *Store) AppendRotationHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rotation_history (run_id, rotated_at, stopped, started, cursor, suppressed, stop_error, start_error)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		formatTime(entry.RotatedAt),
		nullableString(entry.Stopped),
		nullableString(entry.Started),
		entry.Cursor,
		boolInt(entry.Suppressed),
		nullableString(entry.StopError),
		nullableString(entry.StartError),
	)
	if err != nil {
		return fmt.Errorf("append rotation history: %w", err)
	}
	return nil
}

// RecentRotations returns up to limit history entries, newest first.
func (s *Store) RecentRotations(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, rotated_at, stopped, started, cursor, suppressed, stop_error, start_error
         FROM rotation_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rotation history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var rotatedAt sql.NullString
		var stopped, started, stopErr, startErr sql.NullString
		var suppressed int
		if err := rows.Scan(&entry.RunID, &rotatedAt, &stopped, &started, &entry.Cursor, &suppressed, &stopErr, &startErr); err != nil {
			return nil, fmt.Errorf("scan rotation history: %w", err)
		}
		if at, ok := parseTime(rotatedAt); ok {
			entry.RotatedAt = at
		}
		entry.Stopped = stopped.String
		entry.Started = started.String
		entry.Suppressed = suppressed != 0
		entry.StopError = stopErr.String
		entry.StartError = startErr.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
