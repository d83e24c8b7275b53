package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// It defaults the required fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RootFolder = base
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.YouTube.VideoID = "test-video"
	cfgVal.YouTube.Keyword = "#ask"
	cfgVal.YouTube.ClientSecretPath = filepath.Join(base, "client_secret.json")
	cfgVal.YouTube.TokenPath = filepath.Join(base, "credentials.json")
	cfgVal.Generator.APIKey = "test"
	cfgVal.Metrics.Bind = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLedgerBackend selects the ledger backend.
func WithLedgerBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Backend = backend
	}
}

// WithEngagement sets the like and subscribe powers and the marker text.
func WithEngagement(likePower, subscribePower int64, marker string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engagement.LikePower = likePower
		b.cfg.Engagement.SubscribePower = subscribePower
		b.cfg.Engagement.DescriptionText = marker
	}
}

// WithWebhook enables both webhook toggles against url.
func WithWebhook(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.WebhookURL = url
		b.cfg.Notifications.PlatformErrors = true
		b.cfg.Notifications.GenerationErrors = true
	}
}

// WithClientSecret writes a syntactically valid OAuth client secret file.
func WithClientSecret() ConfigOption {
	return func(b *configBuilder) {
		WriteClientSecret(b.t, b.cfg.YouTube.ClientSecretPath)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.RootFolder
}
