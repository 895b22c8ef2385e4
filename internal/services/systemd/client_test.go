package systemd_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pimo/internal/services/systemd"
	"pimo/internal/testsupport"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "systemctl")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestStartSucceeds(t *testing.T) {
	stub := testsupport.StubSystemctl(t, t.TempDir(), 0)
	client := systemd.New(stub)

	if err := client.Start(context.Background(), "navidrome.service"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	calls := testsupport.StubCalls(t, stub)
	if len(calls) != 1 || calls[0] != "start navidrome.service" {
		t.Fatalf("unexpected calls: %v", calls)
	}
}

func TestStartSurfacesFailureOutput(t *testing.T) {
	script := writeScript(t, `echo "Unit ghost.service not found." >&2
exit 5
`)
	client := systemd.New(script)

	err := client.Start(context.Background(), "ghost.service")
	if err == nil {
		t.Fatal("expected error for failing unit")
	}
	got := err.Error()
	if !strings.Contains(got, "start ghost.service") || !strings.Contains(got, "not found") {
		t.Fatalf("expected wrapped output in error, got %q", got)
	}
}

func TestStopOfInactiveUnitSucceeds(t *testing.T) {
	// stop exits non-zero; the follow-up is-active reports inactive.
	script := writeScript(t, `case "$1" in
stop) exit 1 ;;
is-active) echo inactive; exit 3 ;;
esac
exit 0
`)
	client := systemd.New(script)

	if err := client.Stop(context.Background(), "idle.service"); err != nil {
		t.Fatalf("expected stop of inactive unit to succeed, got %v", err)
	}
}

func TestStopOfStuckUnitFails(t *testing.T) {
	script := writeScript(t, `case "$1" in
stop) echo "Job for stuck.service canceled." >&2; exit 1 ;;
is-active) echo active; exit 0 ;;
esac
exit 0
`)
	client := systemd.New(script)

	if err := client.Stop(context.Background(), "stuck.service"); err == nil {
		t.Fatal("expected error when unit remains active after stop")
	}
}

func TestIsActiveStates(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		active bool
	}{
		{"active", "echo active\nexit 0\n", true},
		{"activating", "echo activating\nexit 0\n", true},
		{"inactive", "echo inactive\nexit 3\n", false},
		{"failed", "echo failed\nexit 3\n", false},
		{"silent exit 3", "exit 3\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := systemd.New(writeScript(t, tc.body))
			active, err := client.IsActive(context.Background(), "x.service")
			if err != nil {
				t.Fatalf("IsActive failed: %v", err)
			}
			if active != tc.active {
				t.Fatalf("expected active=%v, got %v", tc.active, active)
			}
		})
	}
}

func TestMissingBinaryErrors(t *testing.T) {
	client := systemd.New(filepath.Join(t.TempDir(), "no-such-systemctl"))
	if err := client.Start(context.Background(), "a.service"); err == nil {
		t.Fatal("expected error when systemctl is missing")
	}
}
