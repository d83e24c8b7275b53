package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeYouTube(); err != nil {
		return err
	}
	if err := c.normalizeEngagement(); err != nil {
		return err
	}
	c.normalizeGenerator()
	c.normalizeNotifications()
	c.normalizeWorkflow()
	c.normalizeLedger()
	c.normalizeLogging()
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	return nil
}

func (c *Config) normalizePaths() error {
	fromEnv := lookupString("ROOT_FOLDER", &c.Paths.RootFolder)
	explicit := fromEnv || c.Paths.RootFolder != defaultRootFolder

	var err error
	if strings.TrimSpace(c.Paths.RootFolder) == "" {
		c.Paths.RootFolder = defaultRootFolder
		explicit = false
	}
	if c.Paths.RootFolder, err = expandPath(c.Paths.RootFolder); err != nil {
		return fmt.Errorf("paths.root_folder: %w", err)
	}
	if explicit {
		if info, statErr := os.Stat(c.Paths.RootFolder); statErr != nil || !info.IsDir() {
			c.Paths.RootFolder = fallbackRootFolder
		}
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.RootFolder, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() error {
	lookupString("VIDEO_ID", &c.YouTube.VideoID)
	lookupString("CHAT_KEYWORD", &c.YouTube.Keyword)
	lookupString("GOOGLE_API_KEY", &c.YouTube.ClientSecretPath)

	c.YouTube.VideoID = strings.TrimSpace(c.YouTube.VideoID)
	c.YouTube.Keyword = strings.TrimSpace(c.YouTube.Keyword)

	var err error
	if c.YouTube.ClientSecretPath != "" {
		if c.YouTube.ClientSecretPath, err = expandPath(c.YouTube.ClientSecretPath); err != nil {
			return fmt.Errorf("youtube.client_secret_path: %w", err)
		}
	}
	if strings.TrimSpace(c.YouTube.TokenPath) == "" {
		c.YouTube.TokenPath = defaultTokenFile
	}
	c.YouTube.TokenPath = c.StatePath(c.YouTube.TokenPath)
	if c.YouTube.TokenPath, err = expandPath(c.YouTube.TokenPath); err != nil {
		return fmt.Errorf("youtube.token_path: %w", err)
	}
	if c.YouTube.PageSize <= 0 {
		c.YouTube.PageSize = defaultPageSize
	}
	if c.YouTube.PageSize > maxPageSize {
		c.YouTube.PageSize = maxPageSize
	}
	return nil
}

func (c *Config) normalizeEngagement() error {
	if err := lookupInt64("LIKE_POWER", &c.Engagement.LikePower); err != nil {
		return err
	}
	if err := lookupInt64("SUBSCRIBE_POWER", &c.Engagement.SubscribePower); err != nil {
		return err
	}
	lookupString("DESCRIPTION_TEXT", &c.Engagement.DescriptionText)
	return nil
}

func (c *Config) normalizeGenerator() {
	c.Generator.Backend = strings.ToLower(strings.TrimSpace(c.Generator.Backend))
	if c.Generator.Backend == "" {
		c.Generator.Backend = defaultGeneratorBackend
	}
	switch c.Generator.Backend {
	case BackendGemini:
		lookupString("GEMINI_API_KEY", &c.Generator.APIKey)
		if strings.TrimSpace(c.Generator.Model) == "" {
			c.Generator.Model = defaultGeminiModel
		}
	default:
		if !lookupString("OPENROUTER_API_KEY", &c.Generator.APIKey) {
			lookupString("OPENAI_API_KEY", &c.Generator.APIKey)
		}
		if strings.TrimSpace(c.Generator.Model) == "" {
			c.Generator.Model = defaultOpenAIModel
		}
	}
	c.Generator.APIKey = strings.TrimSpace(c.Generator.APIKey)
	c.Generator.BaseURL = strings.TrimSpace(c.Generator.BaseURL)
	if c.Generator.BaseURL == "" {
		c.Generator.BaseURL = defaultOpenAIBaseURL
	}
	if c.Generator.TimeoutSeconds <= 0 {
		c.Generator.TimeoutSeconds = defaultGeneratorTimeout
	}
	if strings.TrimSpace(c.Generator.SystemPrompt) == "" {
		c.Generator.SystemPrompt = defaultSystemPrompt
	}
}

func (c *Config) normalizeNotifications() {
	lookupString("WEBHOOK_URL", &c.Notifications.WebhookURL)
	lookupString("WEBHOOK_USER", &c.Notifications.WebhookUser)
	lookupString("WEBHOOK_PASSWORD", &c.Notifications.WebhookPassword)
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.MaxPerMinute <= 0 {
		c.Notifications.MaxPerMinute = defaultNotifyMaxPerMinute
	}
}

func (c *Config) normalizeWorkflow() {
	if value, ok := os.LookupEnv("INTERVAL"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			parsed = defaultPollInterval
		}
		c.Workflow.PollInterval = parsed
	}
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = defaultPollInterval
	}
}

func (c *Config) normalizeLedger() {
	c.Ledger.Backend = strings.ToLower(strings.TrimSpace(c.Ledger.Backend))
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = defaultLedgerBackend
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
}

// lookupString fills target from the environment when the file left it empty.
func lookupString(key string, target *string) bool {
	if strings.TrimSpace(*target) != "" {
		return false
	}
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return false
	}
	*target = value
	return true
}

// lookupInt64 overrides target when the variable is set. A value that is not
// a whole number is an error.
func lookupInt64(key string, target *int64) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("%s must be a whole number, got %q", key, value)
	}
	*target = parsed
	return nil
}
