package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateEngagement(); err != nil {
		return err
	}
	if err := c.validateGenerator(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateYouTube() error {
	if c.YouTube.VideoID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("youtube.video_id is required. Set VIDEO_ID env var or edit %s (create with 'autoreply config init')", defaultPath)
	}
	if strings.TrimSpace(c.YouTube.ClientSecretPath) == "" {
		return errors.New("youtube.client_secret_path is required. Set GOOGLE_API_KEY to the OAuth client secret JSON path")
	}
	if c.YouTube.PageSize < 1 || c.YouTube.PageSize > maxPageSize {
		return fmt.Errorf("youtube.page_size must be between 1 and %d", maxPageSize)
	}
	return nil
}

func (c *Config) validateEngagement() error {
	if c.Engagement.LikePower < 0 {
		return errors.New("engagement.like_power must be non-negative")
	}
	if c.Engagement.SubscribePower < 0 {
		return errors.New("engagement.subscribe_power must be non-negative")
	}
	return nil
}

func (c *Config) validateGenerator() error {
	switch c.Generator.Backend {
	case BackendOpenAI, BackendGemini:
	default:
		return fmt.Errorf("generator.backend must be %q or %q, got %q", BackendOpenAI, BackendGemini, c.Generator.Backend)
	}
	if c.Generator.APIKey == "" {
		if c.Generator.Backend == BackendGemini {
			return errors.New("generator.api_key is required. Set GEMINI_API_KEY env var")
		}
		return errors.New("generator.api_key is required. Set OPENROUTER_API_KEY or OPENAI_API_KEY env var")
	}
	if c.Generator.Backend == BackendOpenAI {
		if _, err := url.ParseRequestURI(c.Generator.BaseURL); err != nil {
			return fmt.Errorf("generator.base_url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	n := c.Notifications
	if (n.PlatformErrors || n.GenerationErrors) && n.WebhookURL == "" {
		return errors.New("notifications.webhook_url must be set when error notifications are enabled")
	}
	if n.WebhookURL != "" {
		if _, err := url.ParseRequestURI(n.WebhookURL); err != nil {
			return fmt.Errorf("notifications.webhook_url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLedger() error {
	switch c.Ledger.Backend {
	case LedgerJSON, LedgerSQLite:
		return nil
	default:
		return fmt.Errorf("ledger.backend must be %q or %q, got %q", LedgerJSON, LedgerSQLite, c.Ledger.Backend)
	}
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollInterval <= 0 {
		return errors.New("workflow.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
