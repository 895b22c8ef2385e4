package rotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"pimo/internal/config"
	"pimo/internal/logging"
	"pimo/internal/store"
	"pimo/internal/syncwindow"
)

// lockRetryDelay paces flock retries while waiting for a concurrent rotation.
const lockRetryDelay = 100 * time.Millisecond

// lockWaitTimeout bounds how long an invocation waits for the state lock.
const lockWaitTimeout = 30 * time.Second

// UnitManager is the service-manager capability the Runner delegates to.
type UnitManager interface {
	Start(ctx context.Context, unit string) error
	Stop(ctx context.Context, unit string) error
	IsActive(ctx context.Context, unit string) (bool, error)
}

// Storage is the persistence surface the Runner needs. *store.Store
// satisfies it; the window half feeds the embedded sync-window manager.
type Storage interface {
	RotationCursor(ctx context.Context) (store.Cursor, error)
	SaveRotationCursor(ctx context.Context, index int, rotatedAt time.Time) error
	ResetRotation(ctx context.Context) error
	AppendRotationHistory(ctx context.Context, entry store.HistoryEntry) error
	syncwindow.Storage
}

// Result reports what one rotation invocation did.
type Result struct {
	RunID    string
	Outcome  Outcome
	Services int
	StopErr  error
	StartErr error
}

// Runner executes rotation ticks against the persisted cursor.
type Runner struct {
	cfg     *config.Config
	store   Storage
	units   UnitManager
	windows *syncwindow.Manager
	logger  *slog.Logger
	lock    *flock.Flock
	now     func() time.Time
}

// NewRunner constructs a Runner. The state lock file lives next to the
// database so every invocation path (CLI, cron, daemon) contends on it.
func NewRunner(cfg *config.Config, st Storage, units UnitManager, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		store:   st,
		units:   units,
		windows: syncwindow.NewManager(st, cfg.Sync),
		logger:  logger.With(logging.String("component", "rotator")),
		lock:    flock.New(filepath.Join(cfg.Paths.StateDir, "rotator.lock")),
		now:     time.Now,
	}
}

// Rotate performs one tick: stop the current unit, start the next, persist
// the advanced cursor. See the package comment for the error policy.
func (r *Runner) Rotate(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString()}

	services, err := ReadServiceList(r.cfg.Rotation.ServicesFile)
	if err != nil {
		return result, err
	}
	result.Services = len(services)
	if len(services) == 0 {
		r.logger.Info("service list is empty, nothing to rotate",
			logging.String("services_file", r.cfg.Rotation.ServicesFile))
		return result, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockWaitTimeout)
	defer cancel()
	locked, err := r.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return result, fmt.Errorf("acquire rotation lock: %w", err)
	}
	if !locked {
		return result, ErrLockBusy
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil {
			r.logger.Warn("release rotation lock", logging.Error(unlockErr))
		}
	}()

	cursor, err := r.store.RotationCursor(ctx)
	if errors.Is(err, store.ErrStateCorrupt) {
		r.logger.Warn("rotation state unreadable, resetting cursor to zero", logging.Error(err))
		cursor = store.Cursor{}
		if resetErr := r.store.ResetRotation(ctx); resetErr != nil {
			return result, fmt.Errorf("%w: %w", ErrPersistFailed, resetErr)
		}
	} else if err != nil {
		return result, err
	}

	window, err := r.windows.Current(ctx)
	if err != nil {
		return result, err
	}

	now := r.now()
	outcome := Plan(services, cursor, window, now)
	result.Outcome = outcome

	if outcome.Suppressed {
		r.logger.Info("rotation suppressed by sync window",
			logging.Time("window_expires", window.ExpiresAt),
			logging.Int("cursor", cursor.Index))
		r.appendHistory(ctx, store.HistoryEntry{
			RunID:      result.RunID,
			RotatedAt:  now,
			Cursor:     cursor.Index,
			Suppressed: true,
		})
		return result, nil
	}

	result.StopErr = r.stopUnit(ctx, outcome.Stop)
	result.StartErr = r.startUnit(ctx, outcome.Start)

	if err := r.store.SaveRotationCursor(ctx, outcome.Next.Index, outcome.Next.LastRotatedAt); err != nil {
		return result, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	r.appendHistory(ctx, store.HistoryEntry{
		RunID:      result.RunID,
		RotatedAt:  now,
		Stopped:    outcome.Stop,
		Started:    outcome.Start,
		Cursor:     outcome.Next.Index,
		StopError:  errString(result.StopErr),
		StartError: errString(result.StartErr),
	})

	r.logger.Info("rotation complete",
		logging.String("stopped", outcome.Stop),
		logging.String("started", outcome.Start),
		logging.Int("cursor", outcome.Next.Index),
		logging.Int("services", len(services)))
	return result, nil
}

func (r *Runner) stopUnit(ctx context.Context, unit string) error {
	actionCtx, cancel := r.actionContext(ctx)
	defer cancel()
	if err := r.units.Stop(actionCtx, unit); err != nil {
		r.logger.Warn("stop failed, rotation advances anyway",
			logging.String("unit", unit), logging.Error(err))
		return err
	}
	return nil
}

func (r *Runner) startUnit(ctx context.Context, unit string) error {
	actionCtx, cancel := r.actionContext(ctx)
	defer cancel()
	if err := r.units.Start(actionCtx, unit); err != nil {
		r.logger.Warn("start failed, rotation advances anyway",
			logging.String("unit", unit), logging.Error(err))
		return err
	}
	return nil
}

func (r *Runner) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(r.cfg.Rotation.ActionTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// History is a journal, not the source of truth; failures only warn.
func (r *Runner) appendHistory(ctx context.Context, entry store.HistoryEntry) {
	if err := r.store.AppendRotationHistory(ctx, entry); err != nil {
		r.logger.Warn("append rotation history", logging.Error(err))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
