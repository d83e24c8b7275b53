package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. State files (ledger, OAuth token,
// lock and pid files) live under RootFolder.
type Paths struct {
	RootFolder string `toml:"root_folder"`
	LogDir     string `toml:"log_dir"`
}

// YouTube contains the target video and OAuth credential locations.
type YouTube struct {
	VideoID          string `toml:"video_id"`
	Keyword          string `toml:"keyword"`
	ClientSecretPath string `toml:"client_secret_path"`
	TokenPath        string `toml:"token_path"`
	PageSize         int64  `toml:"page_size"`
}

// Engagement contains the gate weights and the description marker text.
type Engagement struct {
	LikePower       int64  `toml:"like_power"`
	SubscribePower  int64  `toml:"subscribe_power"`
	DescriptionText string `toml:"description_text"`
}

// Generator contains text-generation backend settings.
type Generator struct {
	Backend        string `toml:"backend"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SystemPrompt   string `toml:"system_prompt"`
}

// Notifications contains configuration for the error webhook.
type Notifications struct {
	WebhookURL       string `toml:"webhook_url"`
	WebhookUser      string `toml:"webhook_user"`
	WebhookPassword  string `toml:"webhook_password"`
	PlatformErrors   bool   `toml:"platform_errors"`
	GenerationErrors bool   `toml:"generation_errors"`
	RequestTimeout   int    `toml:"request_timeout"`
	MaxPerMinute     int    `toml:"max_per_minute"`
}

// Ledger selects the reply ledger backend.
type Ledger struct {
	Backend string `toml:"backend"`
}

// Workflow contains daemon timing.
type Workflow struct {
	PollInterval int `toml:"poll_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
}

// Metrics contains the optional Prometheus endpoint bind address.
type Metrics struct {
	Bind string `toml:"bind"`
}

// Config encapsulates all configuration values for the auto-replier.
//
// Configuration sections by subsystem:
//   - Paths: root folder for state files and the log directory
//   - YouTube: target video, trigger keyword, OAuth files
//   - Engagement: gate weights and description marker
//   - Generator: text-generation backend
//   - Notifications: error webhook
//   - Ledger: reply ledger backend
//   - Workflow: polling interval
//   - Logging: log format, level, and retention
//   - Metrics: Prometheus endpoint
type Config struct {
	Paths         Paths         `toml:"paths"`
	YouTube       YouTube       `toml:"youtube"`
	Engagement    Engagement    `toml:"engagement"`
	Generator     Generator     `toml:"generator"`
	Notifications Notifications `toml:"notifications"`
	Ledger        Ledger        `toml:"ledger"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Metrics       Metrics       `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Values from a .env file next to the working
// directory or the config file are exported first without overriding the environment.
// Every failure is tagged with services.ErrConfiguration.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, configError(err)
	}

	if err := loadDotEnv(resolvedPath); err != nil {
		return nil, "", false, configError(err)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, configError(fmt.Errorf("open config: %w", err))
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, configError(fmt.Errorf("parse config: %w", err))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, configError(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, configError(err)
	}

	return &cfg, resolvedPath, exists, nil
}

func configError(err error) error {
	return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("autoreply.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the root folder and log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RootFolder, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath resolves name against the root folder unless it is already absolute.
func (c *Config) StatePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.RootFolder, name)
}

// LedgerPath returns the JSON ledger file for the configured video.
func (c *Config) LedgerPath() string {
	return c.StatePath(fmt.Sprintf("replied_to_%s.json", c.YouTube.VideoID))
}

// LedgerDBPath returns the SQLite ledger database path.
func (c *Config) LedgerDBPath() string {
	return c.StatePath("ledger.db")
}

// LockPath returns the single-instance daemon lock file.
func (c *Config) LockPath() string {
	return c.StatePath("autoreply.lock")
}

// PIDPath returns the daemon pid file.
func (c *Config) PIDPath() string {
	return c.StatePath("autoreply.pid")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// GeneratorConfig contains the text-generation connection settings.
type GeneratorConfig struct {
	Backend        string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	SystemPrompt   string
}

// GetGenerator returns the trimmed generator settings.
func (c *Config) GetGenerator() GeneratorConfig {
	return GeneratorConfig{
		Backend:        strings.TrimSpace(c.Generator.Backend),
		APIKey:         strings.TrimSpace(c.Generator.APIKey),
		BaseURL:        strings.TrimSpace(c.Generator.BaseURL),
		Model:          strings.TrimSpace(c.Generator.Model),
		Referer:        strings.TrimSpace(c.Generator.Referer),
		Title:          strings.TrimSpace(c.Generator.Title),
		TimeoutSeconds: c.Generator.TimeoutSeconds,
		SystemPrompt:   strings.TrimSpace(c.Generator.SystemPrompt),
	}
}
