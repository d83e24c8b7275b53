package config

const (
	defaultConfigPath          = "~/.config/autoreply/config.toml"
	defaultRootFolder          = "~/.local/share/autoreply"
	fallbackRootFolder         = "/app"
	defaultTokenFile           = "credentials.json"
	defaultPageSize            = 100
	maxPageSize                = 100
	defaultPollInterval        = 300
	defaultLikePower           = 1
	defaultSubscribePower      = 1
	defaultDescriptionText     = "!!! Charging power, replies will resume as likes and subscribers grow !!!"
	defaultGeneratorBackend    = BackendOpenAI
	defaultOpenAIBaseURL       = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenAIModel         = "openai/gpt-4o-mini"
	defaultGeminiModel         = "gemini-2.5-flash"
	defaultGeneratorReferer    = "https://github.com/sheldonchiu/chatgpt-youtube-autoreply"
	defaultGeneratorTitle      = "YouTube Auto Reply"
	defaultGeneratorTimeout    = 60
	defaultSystemPrompt        = "You reply to YouTube comments on behalf of the channel owner. Answer the comment directly in plain text, in the language of the comment, in at most a few sentences."
	defaultNotifyTimeout       = 10
	defaultNotifyMaxPerMinute  = 6
	defaultLedgerBackend       = LedgerJSON
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultLogMaxSizeMB        = 50
	defaultLogMaxBackups       = 5
	BackendOpenAI              = "openai"
	BackendGemini              = "gemini"
	LedgerJSON                 = "json"
	LedgerSQLite               = "sqlite"
	DefaultPollIntervalSeconds = defaultPollInterval
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RootFolder: defaultRootFolder,
		},
		YouTube: YouTube{
			TokenPath: defaultTokenFile,
			PageSize:  defaultPageSize,
		},
		Engagement: Engagement{
			LikePower:       defaultLikePower,
			SubscribePower:  defaultSubscribePower,
			DescriptionText: defaultDescriptionText,
		},
		Generator: Generator{
			Backend:        defaultGeneratorBackend,
			BaseURL:        defaultOpenAIBaseURL,
			Referer:        defaultGeneratorReferer,
			Title:          defaultGeneratorTitle,
			TimeoutSeconds: defaultGeneratorTimeout,
			SystemPrompt:   defaultSystemPrompt,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			MaxPerMinute:   defaultNotifyMaxPerMinute,
		},
		Ledger: Ledger{
			Backend: defaultLedgerBackend,
		},
		Workflow: Workflow{
			PollInterval: defaultPollInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
		},
	}
}
