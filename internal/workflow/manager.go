package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/replycycle"
)

// Deps are the collaborators a Manager drives.
type Deps struct {
	Platform  replycycle.Platform
	Generator replycycle.Generator
	Notifier  replycycle.Notifier
	Store     ledger.Store
}

// Manager runs reply cycles against one video.
type Manager struct {
	cfg          *config.Config
	deps         Deps
	logger       *slog.Logger
	pollInterval time.Duration
	now          func() time.Time
	newID        func() string

	ledgerOnce sync.Once
	ledger     *ledger.Ledger
	ledgerErr  error

	// cycleMu serialises cycles between the loop and RunOnce.
	cycleMu sync.Mutex

	mu         sync.RWMutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	lastErr    error
	lastResult replycycle.Result
	lastRun    time.Time
	cycles     int
	failures   int
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPollInterval overrides workflow.poll_interval.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithClock overrides the time source used for status timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides how cycle ids are produced.
func WithIDGenerator(newID func() string) ManagerOption {
	return func(m *Manager) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, deps Deps, logger *slog.Logger, opts ...ManagerOption) *Manager {
	interval := time.Duration(cfg.Workflow.PollInterval) * time.Second
	if interval <= 0 {
		interval = config.DefaultPollIntervalSeconds * time.Second
	}
	m := &Manager{
		cfg:          cfg,
		deps:         deps,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: interval,
		now:          time.Now,
		newID:        newCycleID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ledger loads the reply ledger on first use and returns the shared instance.
func (m *Manager) Ledger(ctx context.Context) (*ledger.Ledger, error) {
	m.ledgerOnce.Do(func() {
		l, err := m.deps.Store.Load(ctx, m.cfg.YouTube.VideoID)
		if err != nil {
			m.ledgerErr = fmt.Errorf("load reply ledger: %w", err)
			return
		}
		m.mu.Lock()
		m.ledger = l
		m.mu.Unlock()
		metrics.SetLedgerSize(l.Len())
		m.logger.Info("reply ledger loaded",
			logging.String(logging.FieldVideoID, m.cfg.YouTube.VideoID),
			logging.Int("entries", l.Len()),
		)
	})
	return m.ledger, m.ledgerErr
}

func (m *Manager) cycleOptions() replycycle.Options {
	return replycycle.Options{
		VideoID:        m.cfg.YouTube.VideoID,
		Keyword:        m.cfg.YouTube.Keyword,
		Marker:         m.cfg.Engagement.DescriptionText,
		LikePower:      m.cfg.Engagement.LikePower,
		SubscribePower: m.cfg.Engagement.SubscribePower,
		PageSize:       m.cfg.YouTube.PageSize,
	}
}
