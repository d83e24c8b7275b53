package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/replycycle"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

// Start loads the ledger and begins the polling loop in the background.
func (m *Manager) Start(ctx context.Context) error {
	if _, err := m.Ledger(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.running = true
	m.mu.Unlock()

	m.logger.Info("reply loop started",
		logging.String(logging.FieldVideoID, m.cfg.YouTube.VideoID),
		logging.Duration("interval", m.pollInterval),
	)
	go m.loop(runCtx, done)
	return nil
}

// Stop terminates the loop and waits for the in-flight cycle to persist.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running || m.cancel == nil {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	<-done
}

// Done is closed when the loop exits. It is nil before Start.
func (m *Manager) Done() <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.done
}

// RunOnce runs a single cycle and persists the ledger. The cycle error and
// any persistence error are both returned.
func (m *Manager) RunOnce(ctx context.Context) (replycycle.Result, error) {
	if _, err := m.Ledger(ctx); err != nil {
		return replycycle.Result{}, err
	}
	return m.runCycle(ctx)
}

func (m *Manager) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(done)
		m.logger.Info("reply loop stopped")
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		_, _ = m.runCycle(ctx)

		m.logger.Debug("sleeping until next cycle", logging.Duration("interval", m.pollInterval))
		timer := time.NewTimer(m.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (m *Manager) runCycle(ctx context.Context) (replycycle.Result, error) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	cycleID := m.newID()
	ctx = services.WithCycleID(ctx, cycleID)
	ctx = services.WithVideoID(ctx, m.cfg.YouTube.VideoID)
	logger := logging.WithContext(ctx, m.logger)

	started := m.now()
	cycle := replycycle.New(m.deps.Platform, m.deps.Generator, m.deps.Notifier, m.ledger, m.cycleOptions(), m.logger)
	result, cycleErr := cycle.Run(ctx)

	// Saved even when the cycle failed or was cancelled so completed replies are kept.
	saveErr := m.deps.Store.Save(context.WithoutCancel(ctx), m.cfg.YouTube.VideoID, m.ledger)
	if saveErr != nil {
		saveErr = fmt.Errorf("persist reply ledger: %w", saveErr)
		logging.ErrorWithContext(logger, "reply ledger not saved", "ledger_save_failed",
			logging.Error(saveErr),
			logging.String(logging.FieldErrorHint, "check permissions on the root folder or ledger database"),
		)
	}
	metrics.SetLedgerSize(m.ledger.Len())

	err := errors.Join(cycleErr, saveErr)
	m.recordCycle(result, err, started)

	switch {
	case cycleErr == nil:
		metrics.CycleFinished("ok")
		logger.Info("cycle complete",
			logging.Int("pages", result.Pages),
			logging.Int("scanned", result.Scanned),
			logging.Int("replied", result.Replied),
			logging.Int("deferred", result.Deferred),
			logging.Int("description_updates", result.DescriptionUpdates),
			logging.Bool("stopped_on_seen", result.StoppedOnSeen),
			logging.Int("ledger_size", m.ledger.Len()),
			logging.Duration("elapsed", m.now().Sub(started)),
		)
	case errors.Is(cycleErr, context.Canceled):
		metrics.CycleFinished("cancelled")
		logger.Info("cycle interrupted by shutdown", logging.Int("replied", result.Replied))
	default:
		kind := services.Classify(cycleErr)
		metrics.CycleFinished(kind)
		m.logCycleFailure(logger, kind, result, cycleErr)
	}
	return result, err
}
