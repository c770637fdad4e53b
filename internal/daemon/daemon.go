package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"fileforge/internal/api"
	"fileforge/internal/audit"
	"fileforge/internal/config"
	"fileforge/internal/formats"
	"fileforge/internal/logging"
	"fileforge/internal/manager"
	"fileforge/internal/notifications"
	"fileforge/internal/preflight"
	"fileforge/internal/queue"
)

// Daemon coordinates the conversion services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	ledger   *audit.Log
	recorder *audit.Recorder
	registry *formats.Registry
	manager  *manager.Manager
	jobs     *api.JobService
	apiSrv   *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Components bundles the daemon's collaborators.
type Components struct {
	Store    *queue.Store
	Ledger   *audit.Log
	Recorder *audit.Recorder
	Registry *formats.Registry
	Manager  *manager.Manager
	Logger   *slog.Logger
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	APIAddr      string
	JobDBPath    string
	AuditDBPath  string
	LockFilePath string
	Queue        queue.Stats
	Dependencies []preflight.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, parts Components) (*Daemon, error) {
	if cfg == nil || parts.Store == nil || parts.Manager == nil {
		return nil, errors.New("daemon requires config, store, and manager")
	}
	logger := parts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := parts.Registry
	if registry == nil {
		registry = formats.NewRegistry()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "fileforged.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    parts.Store,
		ledger:   parts.Ledger,
		recorder: parts.Recorder,
		registry: registry,
		manager:  parts.Manager,
		jobs:     api.NewJobService(parts.Store),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = apiSrv
	return d, nil
}

// Start acquires the daemon lock, recovers interrupted jobs, and launches the
// worker pool, API server, and retention sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another fileforged instance is already running")
	}

	if err := preflight.CheckDirectories(d.cfg); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight: %w", err)
	}
	d.reportDependencies()
	d.reportFreeSpace()

	// Workers cannot resume a conversion after a crash; their rows fail
	// so a restart never shows phantom progress.
	reset, err := d.store.ResetStuckProcessing(ctx, queue.ShutdownFailureReason)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("recover interrupted jobs: %w", err)
	}
	if reset > 0 {
		d.logger.Warn("failed jobs interrupted by previous shutdown", logging.Int64("count", reset))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.manager.Start()

	if err := d.apiSrv.start(d.ctx); err != nil {
		d.manager.Stop()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		_ = d.lock.Unlock()
		return err
	}

	d.wg.Add(1)
	go d.sweepLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("fileforged started",
		logging.String("lock", d.lockPath),
		logging.Int("workers", d.cfg.Workers.Count))
	return nil
}

// Stop halts background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.manager.Stop()
	d.apiSrv.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("fileforged stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.ledger != nil {
		if err := d.ledger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		APIAddr:      d.APIAddr(),
		JobDBPath:    d.store.Path(),
		LockFilePath: d.lockPath,
		Dependencies: preflight.CheckBinaries(preflight.Requirements(d.cfg)),
	}
	if d.ledger != nil {
		status.AuditDBPath = d.ledger.Path()
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.Queue = stats
	}
	return status
}

// Manager exposes the job manager for IPC and API wiring.
func (d *Daemon) Manager() *manager.Manager {
	return d.manager
}

// Jobs exposes the read-only job service.
func (d *Daemon) Jobs() *api.JobService {
	return d.jobs
}

// Recorder exposes the audit recorder.
func (d *Daemon) Recorder() *audit.Recorder {
	return d.recorder
}

// Bus exposes the notification bus.
func (d *Daemon) Bus() *notifications.Bus {
	return d.manager.Bus()
}

// APIAddr returns the bound API address, empty until Start succeeds.
func (d *Daemon) APIAddr() string {
	if d.apiSrv == nil {
		return ""
	}
	return d.apiSrv.addr()
}

func (d *Daemon) reportDependencies() {
	for _, status := range preflight.CheckBinaries(preflight.Requirements(d.cfg)) {
		if status.Available {
			continue
		}
		level := d.logger.Warn
		if status.Optional {
			level = d.logger.Info
		}
		level("external tool unavailable",
			logging.String("tool", status.Name),
			logging.String("command", status.Command),
			logging.String("detail", status.Detail))
	}
}

func (d *Daemon) reportFreeSpace() {
	free, err := preflight.FreeSpace(d.cfg.Paths.OutputDir)
	if err != nil {
		d.logger.Warn("free space check failed", logging.Error(err))
		return
	}
	if free < preflight.MinFreeSpaceBytes {
		d.logger.Warn("output volume is low on space",
			logging.String("path", d.cfg.Paths.OutputDir),
			logging.Int64("free_bytes", int64(free)))
	}
}
