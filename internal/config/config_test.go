package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VIDEO_ID", "vid123")
	t.Setenv("GOOGLE_API_KEY", "/tmp/client_secret.json")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
}

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAT_KEYWORD", "@bot")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantRoot := filepath.Join(tempHome, ".local", "share", "autoreply")
	if cfg.Paths.RootFolder != wantRoot {
		t.Fatalf("unexpected root folder: got %q want %q", cfg.Paths.RootFolder, wantRoot)
	}
	if cfg.Paths.LogDir != filepath.Join(wantRoot, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.YouTube.TokenPath != filepath.Join(wantRoot, "credentials.json") {
		t.Fatalf("unexpected token path: %q", cfg.YouTube.TokenPath)
	}
	if cfg.YouTube.VideoID != "vid123" {
		t.Fatalf("expected video id from env, got %q", cfg.YouTube.VideoID)
	}
	if cfg.YouTube.Keyword != "@bot" {
		t.Fatalf("expected keyword from env, got %q", cfg.YouTube.Keyword)
	}
	if cfg.Generator.APIKey != "or-key" {
		t.Fatalf("expected generator key from env, got %q", cfg.Generator.APIKey)
	}
	if cfg.Workflow.PollInterval != 300 {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.PollInterval)
	}
	if cfg.LedgerPath() != filepath.Join(wantRoot, "replied_to_vid123.json") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.RootFolder, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "autoreply.toml")

	type payload struct {
		Paths struct {
			RootFolder string `toml:"root_folder"`
		} `toml:"paths"`
		YouTube struct {
			VideoID          string `toml:"video_id"`
			ClientSecretPath string `toml:"client_secret_path"`
			PageSize         int64  `toml:"page_size"`
		} `toml:"youtube"`
		Generator struct {
			Backend string `toml:"backend"`
			APIKey  string `toml:"api_key"`
		} `toml:"generator"`
		Ledger struct {
			Backend string `toml:"backend"`
		} `toml:"ledger"`
	}
	custom := payload{}
	custom.Paths.RootFolder = tempDir
	custom.YouTube.VideoID = "abc"
	custom.YouTube.ClientSecretPath = filepath.Join(tempDir, "secret.json")
	custom.YouTube.PageSize = 500
	custom.Generator.Backend = "Gemini"
	custom.Generator.APIKey = "gem-key"
	custom.Ledger.Backend = "sqlite"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.RootFolder != tempDir {
		t.Fatalf("unexpected root folder: %q", cfg.Paths.RootFolder)
	}
	if cfg.YouTube.PageSize != 100 {
		t.Fatalf("expected page size capped at 100, got %d", cfg.YouTube.PageSize)
	}
	if cfg.Generator.Backend != config.BackendGemini {
		t.Fatalf("unexpected backend: %q", cfg.Generator.Backend)
	}
	if cfg.Generator.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected gemini model default: %q", cfg.Generator.Model)
	}
	if cfg.LedgerDBPath() != filepath.Join(tempDir, "ledger.db") {
		t.Fatalf("unexpected ledger db path: %q", cfg.LedgerDBPath())
	}
}

func TestIntervalEnvFallsBackOnParseFailure(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	t.Setenv("INTERVAL", "not-a-number")
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Workflow.PollInterval != 300 {
		t.Fatalf("expected fallback interval 300, got %d", cfg.Workflow.PollInterval)
	}

	t.Setenv("INTERVAL", "45")
	cfg, _, _, err = config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Workflow.PollInterval != 45 {
		t.Fatalf("expected interval 45, got %d", cfg.Workflow.PollInterval)
	}
}

func TestNumericEnvOverridesFileValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "autoreply.toml")
	content := "[engagement]\nlike_power = 7\nsubscribe_power = 3\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LIKE_POWER", "0")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engagement.LikePower != 0 {
		t.Fatalf("expected LIKE_POWER to override file, got %d", cfg.Engagement.LikePower)
	}
	if cfg.Engagement.SubscribePower != 3 {
		t.Fatalf("expected subscribe power from file, got %d", cfg.Engagement.SubscribePower)
	}
}

func TestMalformedPowerEnvIsConfigurationError(t *testing.T) {
	for _, key := range []string{"LIKE_POWER", "SUBSCRIBE_POWER"} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("HOME", t.TempDir())
			t.Setenv(key, "0.5")

			_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in error, got %v", key, err)
			}
		})
	}
}

func TestRootFolderFallsBackWhenNotDirectory(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("ROOT_FOLDER", filepath.Join(t.TempDir(), "missing"))

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.RootFolder != "/app" {
		t.Fatalf("expected /app fallback, got %q", cfg.Paths.RootFolder)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "/tmp/secret.json")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("VIDEO_ID", "from-env")
	t.Setenv("CHAT_KEYWORD", "")
	os.Unsetenv("CHAT_KEYWORD")
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("VIDEO_ID=from-dotenv\nCHAT_KEYWORD=hey bot\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CHAT_KEYWORD") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.YouTube.VideoID != "from-env" {
		t.Fatalf("expected existing env to win, got %q", cfg.YouTube.VideoID)
	}
	if cfg.YouTube.Keyword != "hey bot" {
		t.Fatalf("expected keyword from .env, got %q", cfg.YouTube.Keyword)
	}
}

func TestLoadMissingVideoIDIsConfigurationError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("VIDEO_ID", "")
	t.Setenv("GOOGLE_API_KEY", "/tmp/secret.json")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error for missing video id")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "youtube.video_id") {
		t.Fatalf("expected video_id in message, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, key := range []string{"video_id", "like_power", "webhook_url", "poll_interval"} {
		if !strings.Contains(content, key) {
			t.Fatalf("sample config missing %q", key)
		}
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.YouTube.VideoID = "vid"
		cfg.YouTube.ClientSecretPath = "/tmp/secret.json"
		cfg.Generator.APIKey = "key"
		return cfg
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative like power", func(c *config.Config) { c.Engagement.LikePower = -1 }, "like_power"},
		{"negative subscribe power", func(c *config.Config) { c.Engagement.SubscribePower = -2 }, "subscribe_power"},
		{"unknown backend", func(c *config.Config) { c.Generator.Backend = "ollama" }, "generator.backend"},
		{"missing api key", func(c *config.Config) { c.Generator.APIKey = "" }, "api_key"},
		{"toggle without url", func(c *config.Config) { c.Notifications.PlatformErrors = true }, "webhook_url"},
		{"unknown ledger", func(c *config.Config) { c.Ledger.Backend = "redis" }, "ledger.backend"},
		{"zero interval", func(c *config.Config) { c.Workflow.PollInterval = 0 }, "poll_interval"},
		{"page size", func(c *config.Config) { c.YouTube.PageSize = 0 }, "page_size"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}
