package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/notifications"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/workflow"
)

const shutdownTimeout = 5 * time.Second

// Daemon owns the workflow manager and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    ledger.Store
	workflow *workflow.Manager
	notifier notifications.Service
	metrics  *metrics.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	LedgerPath   string
	LockFilePath string
	MetricsAddr  string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store ledger.Store, logger *slog.Logger, wf *workflow.Manager, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil {
		return nil, errors.New("daemon requires config, ledger store, and workflow manager")
	}
	if notifier == nil {
		notifier = notifications.NewService(nil, logger)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, starts the metrics endpoint and launches
// the reply loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another autoreply instance is already running")
	}

	if bind := strings.TrimSpace(d.cfg.Metrics.Bind); bind != "" {
		srv, err := metrics.Start(bind, d.workflow.HealthCheck, d.logger)
		if err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("start metrics server: %w", err)
		}
		d.metrics = srv
	}

	if err := d.workflow.Start(ctx); err != nil {
		d.shutdownMetrics()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("autoreply daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldVideoID, d.cfg.YouTube.VideoID),
		logging.String("metrics", d.metrics.Addr()),
	)
	return nil
}

// Stop stops the reply loop and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.workflow.Stop()
	d.shutdownMetrics()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if the next start reports a running instance"),
		)
	}
	d.running.Store(false)
	d.logger.Info("autoreply daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return errors.Join(notifications.Close(d.notifier), d.store.Close())
}

// Done is closed when the reply loop exits.
func (d *Daemon) Done() <-chan struct{} {
	return d.workflow.Done()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Workflow:     d.workflow.Status(),
		LockFilePath: d.lockPath,
		MetricsAddr:  d.metrics.Addr(),
	}
	switch s := d.store.(type) {
	case *ledger.FileStore:
		status.LedgerPath = s.Path(d.cfg.YouTube.VideoID)
	case *ledger.SQLiteStore:
		status.LedgerPath = s.Path()
	}
	return status
}

func (d *Daemon) shutdownMetrics() {
	if d.metrics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.metrics.Shutdown(ctx); err != nil {
		d.logger.Debug("metrics server shutdown", logging.Error(err))
	}
	d.metrics = nil
}
