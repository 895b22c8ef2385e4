package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRotation(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateRelay(); err != nil {
		return err
	}
	if err := c.validateSplash(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateRotation() error {
	if strings.TrimSpace(c.Rotation.ServicesFile) == "" {
		return errors.New("rotation.services_file must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"rotation.action_timeout":    c.Rotation.ActionTimeout,
		"rotation.period_minutes":    c.Rotation.PeriodMinutes,
		"rotation.min_slice_seconds": c.Rotation.MinSliceSecs,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.DefaultMinutes <= 0 {
		return errors.New("sync.default_minutes must be positive")
	}
	if c.Sync.MaxMinutes <= 0 {
		return errors.New("sync.max_minutes must be positive")
	}
	if c.Sync.MaxMinutes < c.Sync.DefaultMinutes {
		return errors.New("sync.max_minutes must be >= sync.default_minutes")
	}
	return nil
}

func (c *Config) validateRelay() error {
	if c.Relay.MaxPerRun < 1 {
		return errors.New("relay.max_per_run must be >= 1")
	}
	if c.Relay.RequestTimeout <= 0 {
		return errors.New("relay.request_timeout must be positive (seconds)")
	}
	if url := c.Relay.WebhookURL; url != "" {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("relay.webhook_url must be an http(s) URL, got %q", url)
		}
	}
	return nil
}

func (c *Config) validateSplash() error {
	if c.Splash.BudgetSeconds <= 0 {
		return errors.New("splash.budget_seconds must be positive")
	}
	if c.Splash.Latitude < -90 || c.Splash.Latitude > 90 {
		return errors.New("splash.latitude must be between -90 and 90")
	}
	if c.Splash.Longitude < -180 || c.Splash.Longitude > 180 {
		return errors.New("splash.longitude must be between -180 and 180")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
