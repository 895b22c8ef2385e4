package daemon_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"pimo/internal/daemon"
	"pimo/internal/testsupport"
)

func TestNewRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer first.Close()

	if _, err := daemon.New(cfg, logger); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestCloseReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("expected lock to be free after Close, got %v", err)
	}
	second.Close()
}
