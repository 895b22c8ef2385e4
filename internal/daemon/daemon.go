package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"pimo/internal/config"
	"pimo/internal/feeds"
	"pimo/internal/logging"
	"pimo/internal/relay"
	"pimo/internal/rotation"
	"pimo/internal/services/systemd"
	"pimo/internal/store"
)

// ErrAlreadyRunning reports that another daemon instance holds the lock.
var ErrAlreadyRunning = errors.New("daemon already running")

// Daemon wires the scheduler, rotator, and relay together.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lock    *flock.Flock
	store   *store.Store
	runner  *rotation.Runner
	relay   *relay.Relay
	cron    *cron.Cron
	pidPath string
}

// New assembles a daemon. The single-instance lock is acquired here;
// a second instance fails fast with ErrAlreadyRunning.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "pimod.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !held {
		return nil, ErrAlreadyRunning
	}

	st, err := store.Open(cfg)
	if err != nil {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("release daemon lock", logging.Error(unlockErr))
		}
		return nil, err
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  logger.With(logging.String("component", "daemon")),
		lock:    lock,
		store:   st,
		runner:  rotation.NewRunner(cfg, st, systemd.New(cfg.Rotation.SystemctlCmd), logger),
		pidPath: filepath.Join(cfg.Paths.LogDir, "pimod.pid"),
	}

	if cfg.Relay.WebhookURL != "" {
		poster, err := relay.NewDiscordWebhook(cfg.Relay.WebhookURL,
			relay.WithWebhookUserAgent(cfg.Relay.UserAgent))
		if err != nil {
			d.Close()
			return nil, err
		}
		fetcher := feeds.NewFetcher(
			feeds.WithUserAgent(cfg.Relay.UserAgent),
			feeds.WithTimeout(time.Duration(cfg.Relay.RequestTimeout)*time.Second))
		d.relay = relay.New(cfg.Relay, st, fetcher, poster, logger)
	}

	return d, nil
}

// Run schedules the periodic jobs and blocks until the context is
// canceled. The rotation interval is computed from the service list
// present at startup.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(d.pidPath)

	services, err := rotation.ReadServiceList(d.cfg.Rotation.ServicesFile)
	if err != nil {
		return err
	}
	interval := RotationInterval(d.cfg.Rotation, len(services))

	skipLogger := cronLogger{logger: d.logger}
	d.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(skipLogger)))

	if _, err := d.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		result, err := d.runner.Rotate(ctx)
		if err != nil {
			d.logger.Error("scheduled rotation failed",
				logging.String("run_id", result.RunID),
				logging.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule rotation: %w", err)
	}

	if d.relay != nil {
		if _, err := d.cron.AddFunc(d.cfg.Relay.Schedule, func() {
			if _, err := d.relay.Run(ctx); err != nil {
				d.logger.Error("scheduled relay pass failed", logging.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule relay: %w", err)
		}
	}

	d.logger.Info("daemon started",
		logging.Int("services", len(services)),
		logging.Duration("rotation_interval", interval),
		logging.Bool("relay_enabled", d.relay != nil),
		logging.Int("pid", os.Getpid()))

	d.cron.Start()
	<-ctx.Done()

	stopped := d.cron.Stop()
	<-stopped.Done()
	d.logger.Info("daemon shutting down")
	return nil
}

// Close releases the store and the single-instance lock.
func (d *Daemon) Close() error {
	var firstErr error
	if d.store != nil {
		if err := d.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Daemon) writePIDFile() error {
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(d.pidPath, []byte(value), 0o644)
}

// cronLogger adapts slog to the cron logger contract so skipped
// overlapping runs surface in the daemon log.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	l.logger.Error(msg, args...)
}
