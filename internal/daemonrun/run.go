package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/daemon"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/replycycle"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the autoreply daemon and blocks until SIGINT/SIGTERM or the
// reply loop exits.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, closer, logPath, err := runLogger(cfg, opts, "autoreply")
	if err != nil {
		return err
	}
	defer logging.CloseQuietly(closer)

	logConfigSnapshot(logger, cfg)

	rt, err := Wire(signalCtx, cfg, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "daemon wiring failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check config.toml, the OAuth token and the generator key"),
		)
		return err
	}

	d, err := daemon.New(cfg, rt.Store, logger, rt.Manager, rt.Notifier)
	if err != nil {
		_ = rt.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the lock file and ledger access"),
		)
		return err
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer removeOwnPIDFile(pidPath)

	select {
	case <-signalCtx.Done():
		logger.Info("autoreply daemon shutting down", logging.String("log", logPath))
	case <-d.Done():
		logger.Info("reply loop exited")
	}

	status := d.Status()
	logger.Info("autoreply daemon summary",
		logging.String(logging.FieldEventType, "daemon_summary"),
		logging.Int("cycles", status.Workflow.Cycles),
		logging.Int("failures", status.Workflow.Failures),
		logging.Int("ledger_size", status.Workflow.LedgerSize),
		logging.String("ledger_path", status.LedgerPath),
		logging.String("last_error_kind", status.Workflow.LastErrorKind),
	)
	return nil
}

// RunOnce performs a single reply cycle with the same wiring as Run.
func RunOnce(cmdCtx context.Context, cfg *config.Config, opts Options) (replycycle.Result, error) {
	if cfg == nil {
		return replycycle.Result{}, fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, closer, _, err := runLogger(cfg, opts, "autoreply-once")
	if err != nil {
		return replycycle.Result{}, err
	}
	defer logging.CloseQuietly(closer)

	rt, err := Wire(signalCtx, cfg, logger)
	if err != nil {
		return replycycle.Result{}, err
	}
	defer rt.Close()

	return rt.Manager.RunOnce(signalCtx)
}

func runLogger(cfg *config.Config, opts Options, prefix string) (*slog.Logger, io.Closer, string, error) {
	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("%s-%s.log", prefix, runID))

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, closer, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		FilePath:    logPath,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		Development: opts.Development,
	})
	if err != nil {
		return nil, nil, "", fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, prefix+".log", logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update %s.log link: %v\n", prefix, err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: prefix + "-*.log", Exclude: []string{logPath}},
	)
	return logger, closer, logPath, nil
}

func ensureCurrentLogPointer(logDir, name, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, name)
	if err := os.Remove(current); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// removeOwnPIDFile deletes path only while it still records this process.
func removeOwnPIDFile(path string) {
	if pid, err := ReadPID(path); err == nil && pid == os.Getpid() {
		_ = os.Remove(path)
	}
}

// ReadPID returns the pid recorded in the pid file, or 0 when absent.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", path, err)
	}
	return pid, nil
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	gen := cfg.GetGenerator()
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String(logging.FieldVideoID, cfg.YouTube.VideoID),
		logging.Bool("keyword_filter", cfg.YouTube.Keyword != ""),
		logging.Int64("like_power", cfg.Engagement.LikePower),
		logging.Int64("subscribe_power", cfg.Engagement.SubscribePower),
		logging.Int("poll_interval_seconds", cfg.Workflow.PollInterval),
		logging.String("generator_backend", gen.Backend),
		logging.String("generator_model", gen.Model),
		logging.Bool("generator_key_present", gen.APIKey != ""),
		logging.Bool("webhook_configured", cfg.Notifications.WebhookURL != ""),
		logging.String("ledger_backend", cfg.Ledger.Backend),
		logging.String("metrics_bind", cfg.Metrics.Bind),
	)
}
