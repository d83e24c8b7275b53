package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/notifications"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/replycycle"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services/gemini"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services/llm"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/workflow"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

var openStore = ledger.Open

// Runtime bundles the wired collaborators of a reply loop.
type Runtime struct {
	Store    ledger.Store
	Notifier notifications.Service
	Platform *youtube.Client
	Manager  *workflow.Manager
}

// Close releases the ledger store and webhook client.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Notifier != nil {
		errs = append(errs, notifications.Close(r.Notifier))
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return errors.Join(errs...)
}

// Wire builds the YouTube client, generator, notifier, ledger store and
// workflow manager from cfg. The OAuth token must already exist.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...workflow.ManagerOption) (_ *Runtime, err error) {
	rt := &Runtime{Notifier: notifications.NewService(cfg, logger)}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	oauthCfg, err := youtube.OAuthConfig(cfg.YouTube.ClientSecretPath)
	if err != nil {
		return nil, err
	}
	tokenLogger := logging.NewComponentLogger(logger, "oauth")
	httpClient, err := youtube.HTTPClient(ctx, oauthCfg, cfg.YouTube.TokenPath, func(saveErr error) {
		if saveErr != nil {
			logging.WarnWithContext(tokenLogger, "refreshed token not saved", "token_save_failed",
				logging.Error(saveErr),
				logging.String(logging.FieldErrorHint, "check permissions on "+cfg.YouTube.TokenPath),
				logging.String(logging.FieldImpact, "next start will refresh the token again"),
			)
			return
		}
		tokenLogger.Debug("refreshed token saved")
	})
	if err != nil {
		if errors.Is(err, youtube.ErrNoToken) {
			return nil, fmt.Errorf("%w (run `autoreply auth` first)", err)
		}
		return nil, err
	}

	rt.Platform, err = youtube.NewClient(ctx, httpClient,
		youtube.WithNotifier(rt.Notifier),
		youtube.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	rt.Store, err = openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	generator, err := NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rt.Manager = workflow.NewManager(cfg, workflow.Deps{
		Platform:  rt.Platform,
		Generator: generator,
		Notifier:  rt.Notifier,
		Store:     rt.Store,
	}, logger, opts...)

	return rt, nil
}

// NewGenerator returns the text generator selected by generator.backend.
func NewGenerator(ctx context.Context, cfg *config.Config) (replycycle.Generator, error) {
	gen := cfg.GetGenerator()
	switch gen.Backend {
	case config.BackendGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         gen.APIKey,
			Model:          gen.Model,
			TimeoutSeconds: gen.TimeoutSeconds,
			SystemPrompt:   gen.SystemPrompt,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendOpenAI, "":
		return llm.NewClient(llm.Config{
			APIKey:         gen.APIKey,
			BaseURL:        gen.BaseURL,
			Model:          gen.Model,
			Referer:        gen.Referer,
			Title:          gen.Title,
			TimeoutSeconds: gen.TimeoutSeconds,
			SystemPrompt:   gen.SystemPrompt,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "generator", "init", fmt.Sprintf("unknown backend %q", gen.Backend), nil)
	}
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckGenerator builds the configured generator and verifies its key and
// model with the backend.
func CheckGenerator(ctx context.Context, cfg *config.Config) error {
	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	hc, ok := gen.(healthChecker)
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}
