package syncwindow

import (
	"context"
	"fmt"
	"time"

	"pimo/internal/config"
	"pimo/internal/store"
)

// Storage is the persistence surface the Manager needs.
type Storage interface {
	SyncWindow(ctx context.Context) (store.WindowRecord, error)
	SaveSyncWindow(ctx context.Context, record store.WindowRecord) error
}

// Manager applies sync events to the persisted window.
type Manager struct {
	storage Storage
	cfg     config.Sync
	now     func() time.Time
}

// NewManager builds a Manager over the given storage.
func NewManager(storage Storage, cfg config.Sync) *Manager {
	return &Manager{storage: storage, cfg: cfg, now: time.Now}
}

// Open starts a window lasting the given number of minutes, replacing any
// current window. Zero minutes uses the configured default; durations above
// the configured maximum are clamped.
func (m *Manager) Open(ctx context.Context, minutes int) (Window, error) {
	if minutes <= 0 {
		minutes = m.cfg.DefaultMinutes
	}
	if m.cfg.MaxMinutes > 0 && minutes > m.cfg.MaxMinutes {
		minutes = m.cfg.MaxMinutes
	}
	now := m.now()
	record := store.WindowRecord{
		Active:    true,
		OpenedAt:  now,
		ExpiresAt: now.Add(time.Duration(minutes) * time.Minute),
	}
	if err := m.storage.SaveSyncWindow(ctx, record); err != nil {
		return Window{}, fmt.Errorf("open sync window: %w", err)
	}
	return windowFromRecord(record), nil
}

// Close ends the current window. Closing an inactive window is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	record, err := m.storage.SyncWindow(ctx)
	if err != nil {
		return fmt.Errorf("close sync window: %w", err)
	}
	if !record.Active {
		return nil
	}
	record.Active = false
	if err := m.storage.SaveSyncWindow(ctx, record); err != nil {
		return fmt.Errorf("close sync window: %w", err)
	}
	return nil
}

// Apply dispatches a parsed bus event.
func (m *Manager) Apply(ctx context.Context, event Event) error {
	switch event.Kind {
	case EventStart:
		_, err := m.Open(ctx, event.Minutes)
		return err
	case EventStop:
		return m.Close(ctx)
	default:
		return fmt.Errorf("unknown sync event kind %d", event.Kind)
	}
}

// Current returns the window state as of now. An expired window reads as
// inactive without being rewritten; the next Open replaces the row anyway.
func (m *Manager) Current(ctx context.Context) (Window, error) {
	record, err := m.storage.SyncWindow(ctx)
	if err != nil {
		return Window{}, fmt.Errorf("read sync window: %w", err)
	}
	window := windowFromRecord(record)
	if !window.ActiveAt(m.now()) {
		window.Active = false
	}
	return window, nil
}

func windowFromRecord(record store.WindowRecord) Window {
	return Window{
		Active:    record.Active,
		OpenedAt:  record.OpenedAt,
		ExpiresAt: record.ExpiresAt,
	}
}
