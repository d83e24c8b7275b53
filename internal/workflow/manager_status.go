package workflow

import (
	"time"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/replycycle"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running       bool
	VideoID       string
	PollInterval  time.Duration
	Cycles        int
	Failures      int
	LastRun       time.Time
	LastResult    replycycle.Result
	LastError     string
	LastErrorKind string
	LedgerSize    int
}

// Status returns the latest workflow information.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:      m.running,
		VideoID:      m.cfg.YouTube.VideoID,
		PollInterval: m.pollInterval,
		Cycles:       m.cycles,
		Failures:     m.failures,
		LastRun:      m.lastRun,
		LastResult:   m.lastResult,
	}
	lastErr := m.lastErr
	l := m.ledger
	m.mu.RUnlock()

	if lastErr != nil {
		summary.LastError = lastErr.Error()
		summary.LastErrorKind = services.Classify(lastErr)
	}
	if l != nil {
		summary.LedgerSize = l.Len()
	}
	return summary
}

func (m *Manager) recordCycle(result replycycle.Result, err error, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
	m.lastRun = at
	m.lastResult = result
	m.lastErr = err
	if err != nil {
		m.failures++
	}
}
