// Package gemini generates comment replies through the Gemini API.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultHTTPTimeout = 60 * time.Second
	defaultTemperature = float32(0.7)
)

// Config captures the settings required to call Gemini.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
	SystemPrompt   string
}

// Client wraps a genai client.
type Client struct {
	cfg    Config
	models *genai.Models
}

// NewClient builds a Gemini client. The API key is required.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "init", "api key required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: metrics.InstrumentClient(&http.Client{Timeout: timeout}, "gemini"),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "init", "create client", err)
	}
	return &Client{cfg: cfg, models: client.Models}, nil
}

// Name identifies the backend in logs.
func (c *Client) Name() string {
	return "gemini:" + c.cfg.Model
}

// Generate returns a reply to prompt. Failures carry services.ErrGeneration.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrGeneration, "gemini", "generate", "prompt required", nil)
	}
	genCfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(defaultTemperature)}
	if system := strings.TrimSpace(c.cfg.SystemPrompt); system != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	result, err := c.models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), genCfg)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return "", err
		}
		return "", services.Wrap(services.ErrGeneration, "gemini", "generate", c.Name(), err)
	}
	reply := strings.TrimSpace(responseText(result))
	if reply == "" {
		return "", services.Wrap(services.ErrGeneration, "gemini", "generate", "empty response", nil)
	}
	return reply, nil
}

// HealthCheck looks up the configured model, which verifies the key without
// spending generation quota.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.models.Get(ctx, c.cfg.Model, nil); err != nil {
		return services.Wrap(services.ErrGeneration, "gemini", "health", c.Name(), err)
	}
	return nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	content := result.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
