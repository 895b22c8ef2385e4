package systemd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client drives systemd units through the systemctl binary.
type Client struct {
	binary string
}

// New constructs a Client. An empty binary falls back to "systemctl" on PATH.
func New(binary string) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "systemctl"
	}
	return &Client{binary: binary}
}

// Start activates a unit. systemctl start is idempotent, so starting an
// already-running unit succeeds without a second instance.
func (c *Client) Start(ctx context.Context, unit string) error {
	output, err := c.run(ctx, "start", unit)
	if err != nil {
		return fmt.Errorf("start %s: %w%s", unit, err, outputSuffix(output))
	}
	return nil
}

// Stop deactivates a unit. systemctl returns non-zero when asked to stop a
// unit that is not running; that case is folded into success by checking
// is-active after the failure.
func (c *Client) Stop(ctx context.Context, unit string) error {
	output, err := c.run(ctx, "stop", unit)
	if err == nil {
		return nil
	}
	if active, activeErr := c.IsActive(ctx, unit); activeErr == nil && !active {
		return nil
	}
	return fmt.Errorf("stop %s: %w%s", unit, err, outputSuffix(output))
}

// IsActive reports whether a unit is currently running. systemctl is-active
// exits non-zero for inactive units, so the output string is consulted
// before the exit code.
func (c *Client) IsActive(ctx context.Context, unit string) (bool, error) {
	output, err := c.run(ctx, "is-active", unit)
	state := strings.TrimSpace(output)
	switch state {
	case "active", "activating", "reloading":
		return true, nil
	case "inactive", "deactivating", "failed", "unknown":
		return false, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Exit 3 with no recognizable output still means "not running".
			return false, nil
		}
		return false, fmt.Errorf("is-active %s: %w", unit, err)
	}
	return false, fmt.Errorf("is-active %s: unrecognized state %q", unit, state)
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func outputSuffix(output string) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return ""
	}
	return ": " + trimmed
}
