package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFormatsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo)).With(
		String("component", "rotator"),
	)

	logger.Info("rotation complete",
		String("started", "navidrome.service"),
		Int("cursor", 2),
		Bool("suppressed", false),
	)

	line := buf.String()
	for _, want := range []string{"INFO", "rotator: rotation complete", "started=navidrome.service", "cursor=2", "suppressed=false"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in output, got %q", want, line)
		}
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelDebug))

	logger.Warn("action failed", String("output", "unit not found"))

	if !strings.Contains(buf.String(), `output="unit not found"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := newConsoleHandler(&buf, slog.LevelWarn)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should be enabled at warn level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJSONHandlerTimestamps(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, slog.LevelInfo))
	logger.Info("tick", Time("at", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	out := buf.String()
	if !strings.Contains(out, `"ts"`) || !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("unexpected json output: %q", out)
	}
}
