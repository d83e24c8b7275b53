package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/notifications"
)

type captured struct {
	mu       sync.Mutex
	bodies   []map[string]string
	user     string
	password string
}

func (c *captured) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func (c *captured) snapshot() ([]map[string]string, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]string(nil), c.bodies...), c.user, c.password
}

func newWebhook(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	rec := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		user, password, _ := r.BasicAuth()
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, body)
		rec.user, rec.password = user, password
		rec.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func webhookConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.WebhookURL = url
	cfg.Notifications.WebhookUser = "ops"
	cfg.Notifications.WebhookPassword = "secret"
	cfg.Notifications.PlatformErrors = true
	cfg.Notifications.GenerationErrors = true
	cfg.Notifications.MaxPerMinute = 60
	return &cfg
}

func TestNewServiceReturnsNoopWithoutURL(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg, logging.NewNop())
	svc.NotifyPlatformError(context.Background(), errors.New("boom"))
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestWebhookPayloadAndBasicAuth(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK)
	svc := notifications.NewService(webhookConfig(srv.URL), logging.NewNop())

	svc.NotifyPlatformError(context.Background(), errors.New("quota exceeded"))
	svc.NotifyGenerationError(context.Background(), errors.New("model overloaded"))

	bodies, user, password := rec.snapshot()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 webhook posts, got %d", len(bodies))
	}
	if user != "ops" || password != "secret" {
		t.Fatalf("unexpected basic auth %q/%q", user, password)
	}
	first, second := bodies[0], bodies[1]
	if first["Location"] != notifications.LocationPlatform || first["Error message"] != "quota exceeded" {
		t.Fatalf("unexpected platform payload %v", first)
	}
	if second["Location"] != notifications.LocationGeneration || second["Error message"] != "model overloaded" {
		t.Fatalf("unexpected generation payload %v", second)
	}
}

func TestWebhookTogglesSuppressNotifications(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK)
	cfg := webhookConfig(srv.URL)
	cfg.Notifications.PlatformErrors = false
	cfg.Notifications.GenerationErrors = false
	svc := notifications.NewService(cfg, logging.NewNop())

	svc.NotifyPlatformError(context.Background(), errors.New("a"))
	svc.NotifyGenerationError(context.Background(), errors.New("b"))
	if rec.count() != 0 {
		t.Fatalf("expected no posts with toggles off, got %d", rec.count())
	}
}

func TestWebhookThrottlesBursts(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK)
	cfg := webhookConfig(srv.URL)
	cfg.Notifications.MaxPerMinute = 2
	svc := notifications.NewService(cfg, logging.NewNop())

	for range 5 {
		svc.NotifyPlatformError(context.Background(), errors.New("again"))
	}
	if rec.count() != 2 {
		t.Fatalf("expected burst capped at 2, got %d", rec.count())
	}
}

func TestWebhookFailureIsNotEscalated(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusInternalServerError)
	svc := notifications.NewService(webhookConfig(srv.URL), logging.NewNop())

	svc.NotifyPlatformError(context.Background(), errors.New("boom"))
	if rec.count() != 1 {
		t.Fatalf("expected one attempt, got %d", rec.count())
	}
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected test notification to surface the 500")
	}
	if err := notifications.Close(svc); err != nil {
		t.Fatalf("close: %v", err)
	}
}
