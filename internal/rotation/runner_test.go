package rotation_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pimo/internal/rotation"
	"pimo/internal/syncwindow"
	"pimo/internal/testsupport"
)

type fakeUnits struct {
	mu      sync.Mutex
	calls   []string
	stopErr error
	running map[string]bool
}

func newFakeUnits() *fakeUnits {
	return &fakeUnits{running: map[string]bool{}}
}

func (f *fakeUnits) Start(_ context.Context, unit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "start "+unit)
	f.running[unit] = true
	return nil
}

func (f *fakeUnits) Stop(_ context.Context, unit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop "+unit)
	if f.stopErr != nil {
		return f.stopErr
	}
	f.running[unit] = false
	return nil
}

func (f *fakeUnits) IsActive(_ context.Context, unit string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[unit], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRotateAdvancesCursorAndActs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServices("a.service", "b.service", "c.service"))
	st := testsupport.MustOpenStore(t, cfg)
	units := newFakeUnits()
	runner := rotation.NewRunner(cfg, st, units, discardLogger())
	ctx := context.Background()

	result, err := runner.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if result.Outcome.Stop != "a.service" || result.Outcome.Start != "b.service" {
		t.Fatalf("unexpected outcome: %+v", result.Outcome)
	}

	cursor, err := st.RotationCursor(ctx)
	if err != nil {
		t.Fatalf("RotationCursor failed: %v", err)
	}
	if cursor.Index != 1 {
		t.Fatalf("expected cursor 1, got %d", cursor.Index)
	}
	if cursor.LastRotatedAt.IsZero() {
		t.Fatal("expected last rotated timestamp to be set")
	}

	if len(units.calls) != 2 || units.calls[0] != "stop a.service" || units.calls[1] != "start b.service" {
		t.Fatalf("unexpected unit calls: %v", units.calls)
	}

	entries, err := st.RecentRotations(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRotations failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Started != "b.service" || entries[0].RunID != result.RunID {
		t.Fatalf("unexpected history: %+v", entries)
	}
}

func TestRotateFullCycleReturnsToStart(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServices("a", "b", "c"))
	st := testsupport.MustOpenStore(t, cfg)
	units := newFakeUnits()
	runner := rotation.NewRunner(cfg, st, units, discardLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := runner.Rotate(ctx); err != nil {
			t.Fatalf("Rotate %d failed: %v", i, err)
		}
	}
	cursor, err := st.RotationCursor(ctx)
	if err != nil {
		t.Fatalf("RotationCursor failed: %v", err)
	}
	if cursor.Index != 0 {
		t.Fatalf("expected cursor wrapped to 0, got %d", cursor.Index)
	}
}

func TestRotateMissingServiceList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	runner := rotation.NewRunner(cfg, st, newFakeUnits(), discardLogger())

	_, err := runner.Rotate(context.Background())
	if !errors.Is(err, rotation.ErrNoServiceList) {
		t.Fatalf("expected ErrNoServiceList, got %v", err)
	}
}

func TestRotateEmptyListLeavesStateUntouched(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServices())
	st := testsupport.MustOpenStore(t, cfg)
	units := newFakeUnits()
	runner := rotation.NewRunner(cfg, st, units, discardLogger())
	ctx := context.Background()

	result, err := runner.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if result.Services != 0 || result.Outcome.Changed {
		t.Fatalf("expected no-op result, got %+v", result)
	}
	if len(units.calls) != 0 {
		t.Fatalf("expected no unit calls, got %v", units.calls)
	}
}

func TestRotateSuppressedBySyncWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServices("a", "b"))
	st := testsupport.MustOpenStore(t, cfg)
	units := newFakeUnits()
	runner := rotation.NewRunner(cfg, st, units, discardLogger())
	ctx := context.Background()

	if _, err := syncwindow.NewManager(st, cfg.Sync).Open(ctx, 30); err != nil {
		t.Fatalf("open window: %v", err)
	}

	result, err := runner.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if !result.Outcome.Suppressed {
		t.Fatalf("expected suppressed outcome, got %+v", result.Outcome)
	}
	if len(units.calls) != 0 {
		t.Fatalf("suppressed tick must not touch units, got %v", units.calls)
	}

	cursor, err := st.RotationCursor(ctx)
	if err != nil {
		t.Fatalf("RotationCursor failed: %v", err)
	}
	if cursor.Index != 0 {
		t.Fatalf("expected cursor unchanged, got %d", cursor.Index)
	}
}

func TestRotateActionFailureStillAdvances(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServices("a", "b"))
	st := testsupport.MustOpenStore(t, cfg)
	units := newFakeUnits()
	units.stopErr = fmt.Errorf("unit wedged")
	runner := rotation.NewRunner(cfg, st, units, discardLogger())
	ctx := context.Background()

	result, err := runner.Rotate(ctx)
	if err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if result.StopErr == nil {
		t.Fatal("expected stop error to be reported")
	}
	cursor, cerr := st.RotationCursor(ctx)
	if cerr != nil {
		t.Fatalf("RotationCursor failed: %v", cerr)
	}
	if cursor.Index != 1 {
		t.Fatalf("expected cursor to advance despite stop failure, got %d", cursor.Index)
	}

	entries, herr := st.RecentRotations(ctx, 1)
	if herr != nil {
		t.Fatalf("RecentRotations failed: %v", herr)
	}
	if len(entries) != 1 || entries[0].StopError == "" {
		t.Fatalf("expected stop error journaled, got %+v", entries)
	}
}

// failingCursorStore delegates to a real store but refuses the cursor write.
type failingCursorStore struct {
	rotation.Storage
	saveErr error
}

func (f *failingCursorStore) SaveRotationCursor(context.Context, int, time.Time) error {
	return f.saveErr
}

func TestRotatePersistFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServices("a", "b"))
	st := testsupport.MustOpenStore(t, cfg)
	units := newFakeUnits()
	broken := &failingCursorStore{Storage: st, saveErr: fmt.Errorf("disk full")}
	runner := rotation.NewRunner(cfg, broken, units, discardLogger())
	ctx := context.Background()

	result, err := runner.Rotate(ctx)
	if !errors.Is(err, rotation.ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}

	// the persist failure happens after the unit actions
	if len(units.calls) != 2 || units.calls[0] != "stop a" || units.calls[1] != "start b" {
		t.Fatalf("expected unit actions before the failed persist, got %v", units.calls)
	}
	if result.StopErr != nil || result.StartErr != nil {
		t.Fatalf("unit actions should have succeeded: %+v", result)
	}

	cursor, cerr := st.RotationCursor(ctx)
	if cerr != nil {
		t.Fatalf("RotationCursor failed: %v", cerr)
	}
	if cursor.Index != 0 {
		t.Fatalf("previous cursor must stay authoritative, got %d", cursor.Index)
	}
}
