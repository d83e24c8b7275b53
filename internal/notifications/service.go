package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
)

const userAgent = "autoreply/1.0"

// Webhook locations.
const (
	LocationPlatform   = "youtube api"
	LocationGeneration = "text generation"
	LocationTest       = "test"
)

// Service defines the notification surface used by the reply cycle.
type Service interface {
	NotifyPlatformError(ctx context.Context, err error)
	NotifyGenerationError(ctx context.Context, err error)
	TestNotification(ctx context.Context) error
}

// NewService builds a webhook notifier when a URL is configured, otherwise a noop.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if cfg == nil {
		return noopService{}
	}
	n := cfg.Notifications
	endpoint := strings.TrimSpace(n.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(n.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perMinute := n.MaxPerMinute
	if perMinute <= 0 {
		perMinute = 6
	}

	client := resty.NewWithClient(metrics.InstrumentClient(&http.Client{}, "webhook")).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Content-Type", "application/json")
	if n.WebhookUser != "" || n.WebhookPassword != "" {
		client.SetBasicAuth(n.WebhookUser, n.WebhookPassword)
	}

	return &webhookService{
		endpoint:   endpoint,
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		platform:   n.PlatformErrors,
		generation: n.GenerationErrors,
		logger:     logging.NewComponentLogger(logger, "notifications"),
	}
}

type payload struct {
	Location     string `json:"Location"`
	ErrorMessage string `json:"Error message"`
}

type webhookService struct {
	endpoint   string
	client     *resty.Client
	limiter    *rate.Limiter
	platform   bool
	generation bool
	logger     *slog.Logger
}

func (w *webhookService) NotifyPlatformError(ctx context.Context, err error) {
	if !w.platform || err == nil {
		return
	}
	w.report(ctx, LocationPlatform, err)
}

func (w *webhookService) NotifyGenerationError(ctx context.Context, err error) {
	if !w.generation || err == nil {
		return
	}
	w.report(ctx, LocationGeneration, err)
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	return w.send(ctx, payload{Location: LocationTest, ErrorMessage: "notification system test"})
}

func (w *webhookService) report(ctx context.Context, location string, err error) {
	logger := logging.WithContext(ctx, w.logger)
	if !w.limiter.Allow() {
		logger.Debug("webhook notification dropped", logging.String("location", location))
		metrics.NotificationSent(location, false)
		return
	}
	// Delivery is not tied to the cycle's cancellation; the client timeout bounds it.
	sendErr := w.send(context.WithoutCancel(ctx), payload{Location: location, ErrorMessage: err.Error()})
	if sendErr != nil {
		logging.WarnWithContext(logger, "webhook notification failed", "notification_failed",
			logging.String("location", location),
			logging.Error(sendErr),
			logging.String(logging.FieldErrorHint, "check notifications.webhook_url and credentials"),
			logging.String(logging.FieldImpact, "operator was not alerted"),
		)
		metrics.NotificationSent(location, false)
		return
	}
	logger.Debug("webhook notification sent", logging.String("location", location))
	metrics.NotificationSent(location, true)
}

func (w *webhookService) send(ctx context.Context, body payload) error {
	if w == nil || w.client == nil {
		return nil
	}
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(w.endpoint)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}

// Close releases idle webhook connections.
func Close(svc Service) error {
	w, ok := svc.(*webhookService)
	if !ok || w.client == nil {
		return nil
	}
	return w.client.Close()
}

type noopService struct{}

func (noopService) NotifyPlatformError(context.Context, error)   {}
func (noopService) NotifyGenerationError(context.Context, error) {}
func (noopService) TestNotification(context.Context) error       { return nil }
