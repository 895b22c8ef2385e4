package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration shared by every subcommand.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Rotation contains configuration for the service rotator.
type Rotation struct {
	ServicesFile  string `toml:"services_file"`
	SystemctlCmd  string `toml:"systemctl_cmd"`
	ActionTimeout int    `toml:"action_timeout"`
	PeriodMinutes int    `toml:"period_minutes"`
	MinSliceSecs  int    `toml:"min_slice_seconds"`
}

// Sync contains limits for the sync-window signal.
type Sync struct {
	DefaultMinutes int `toml:"default_minutes"`
	MaxMinutes     int `toml:"max_minutes"`
}

// Relay contains configuration for the feed-to-webhook relay.
type Relay struct {
	WebhookURL     string   `toml:"webhook_url"`
	Feeds          []string `toml:"feeds"`
	FeedsFile      string   `toml:"feeds_file"`
	FeedsDir       string   `toml:"feeds_dir"`
	MaxPerRun      int      `toml:"max_per_run"`
	RequestTimeout int      `toml:"request_timeout"`
	UserAgent      string   `toml:"user_agent"`
	Schedule       string   `toml:"schedule"`
}

// Splash contains configuration for the SSH login splash.
type Splash struct {
	Latitude      float64 `toml:"latitude"`
	Longitude     float64 `toml:"longitude"`
	LastFMUser    string  `toml:"lastfm_user"`
	LastFMAPIKey  string  `toml:"lastfm_api_key"`
	BudgetSeconds int     `toml:"budget_seconds"`
	DiskPath      string  `toml:"disk_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for PiMO.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Rotation: service list, systemctl binary, timings
//   - Sync: sync-window duration limits
//   - Relay: feeds, webhook target, per-run cap
//   - Splash: weather/last.fm data sources
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Rotation Rotation `toml:"rotation"`
	Sync     Sync     `toml:"sync"`
	Relay    Relay    `toml:"relay"`
	Splash   Splash   `toml:"splash"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pimo/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pimo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Rotation.ServicesFile, err = expandPath(c.Rotation.ServicesFile); err != nil {
		return fmt.Errorf("rotation.services_file: %w", err)
	}
	c.Rotation.SystemctlCmd = strings.TrimSpace(c.Rotation.SystemctlCmd)
	if c.Rotation.SystemctlCmd == "" {
		c.Rotation.SystemctlCmd = defaultSystemctlCmd
	}

	if c.Relay.WebhookURL == "" {
		if value, ok := os.LookupEnv("PIMO_WEBHOOK_URL"); ok {
			c.Relay.WebhookURL = value
		}
	}
	c.Relay.WebhookURL = strings.TrimSpace(c.Relay.WebhookURL)
	c.Relay.UserAgent = strings.TrimSpace(c.Relay.UserAgent)
	if c.Relay.UserAgent == "" {
		c.Relay.UserAgent = defaultRelayUserAgent
	}
	if strings.TrimSpace(c.Relay.FeedsFile) != "" {
		if c.Relay.FeedsFile, err = expandPath(c.Relay.FeedsFile); err != nil {
			return fmt.Errorf("relay.feeds_file: %w", err)
		}
	}
	if strings.TrimSpace(c.Relay.FeedsDir) != "" {
		if c.Relay.FeedsDir, err = expandPath(c.Relay.FeedsDir); err != nil {
			return fmt.Errorf("relay.feeds_dir: %w", err)
		}
	}

	if c.Splash.LastFMAPIKey == "" {
		if value, ok := os.LookupEnv("LASTFM_API_KEY"); ok {
			c.Splash.LastFMAPIKey = strings.TrimSpace(value)
		}
	}
	c.Splash.DiskPath = strings.TrimSpace(c.Splash.DiskPath)
	if c.Splash.DiskPath == "" {
		c.Splash.DiskPath = "/"
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
