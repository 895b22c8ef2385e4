// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"pimo/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Rotation.ServicesFile = filepath.Join(base, "services.rotate")
	cfgVal.Rotation.ActionTimeout = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServices writes the provided unit names to the config's services file.
func WithServices(units ...string) ConfigOption {
	return func(b *configBuilder) {
		contents := strings.Join(units, "\n") + "\n"
		if err := os.WriteFile(b.cfg.Rotation.ServicesFile, []byte(contents), 0o644); err != nil {
			b.t.Fatalf("write services file: %v", err)
		}
	}
}

// WithWebhook sets the relay webhook URL on the test config.
func WithWebhook(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Relay.WebhookURL = url
	}
}

// WithStubSystemctl writes a stub systemctl script that always exits with the
// given code and points the config at it. Each invocation is appended to
// <stub>.calls for assertions.
func WithStubSystemctl(exitCode int) ConfigOption {
	return func(b *configBuilder) {
		path := StubSystemctl(b.t, b.baseDir, exitCode)
		b.cfg.Rotation.SystemctlCmd = path
	}
}

// StubSystemctl writes a systemctl stand-in under dir and returns its path.
func StubSystemctl(t testing.TB, dir string, exitCode int) string {
	t.Helper()
	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	path := filepath.Join(binDir, "systemctl")
	script := "#!/bin/sh\necho \"$@\" >> \"$0.calls\"\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write systemctl stub: %v", err)
	}
	return path
}

// StubCalls returns the recorded invocations of a stub created by StubSystemctl.
func StubCalls(t testing.TB, stubPath string) []string {
	t.Helper()
	data, err := os.ReadFile(stubPath + ".calls")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read stub calls: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
