package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

func completionPayload(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			},
		},
	}
}

func TestGenerateSendsSystemPromptAndHeaders(t *testing.T) {
	var received chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "Auto Reply" {
			t.Errorf("unexpected title header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(completionPayload("  Thanks for watching!  "))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo", Title: "Auto Reply", SystemPrompt: "be kind"})
	reply, err := client.Generate(context.Background(), "what camera do you use?")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply != "Thanks for watching!" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if received.Model != "demo" || len(received.Messages) != 2 {
		t.Fatalf("unexpected request %+v", received)
	}
	if received.Messages[0].Role != "system" || received.Messages[0].Content != "be kind" {
		t.Fatalf("unexpected system message %+v", received.Messages[0])
	}
	if received.Messages[1].Content != "what camera do you use?" {
		t.Fatalf("unexpected user message %+v", received.Messages[1])
	}
}

func TestGenerateFailureIsGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"}, WithSleeper(func(time.Duration) {}))
	_, err := client.Generate(context.Background(), "hello")
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected wrapped 401, got %v", err)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Generate(context.Background(), "hello"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientDeltaAndLegacyText(t *testing.T) {
	payloads := []map[string]any{
		{"choices": []any{map[string]any{"delta": map[string]any{"content": "from delta"}}}},
		{"choices": []any{map[string]any{"text": "from text"}}},
	}
	want := []string{"from delta", "from text"}
	for i, payload := range payloads {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(payload)
		}))
		client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
		reply, err := client.Generate(context.Background(), "hi")
		server.Close()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if reply != want[i] {
			t.Fatalf("reply %d = %q, want %q", i, reply, want[i])
		}
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		_ = json.NewEncoder(w).Encode(completionPayload("ok"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	if _, err := client.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		content := ""
		if calls >= 3 {
			content = "finally"
		}
		_ = json.NewEncoder(w).Encode(completionPayload(content))
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(5),
	)
	reply, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply != "finally" || calls != 3 {
		t.Fatalf("unexpected reply %q after %d calls", reply, calls)
	}
}

func TestBackoffDoublesUpToMax(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoff(i + 1); got != expected {
			t.Fatalf("backoff(%d) = %v, want %v", i+1, got, expected)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse: %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("expected negative value rejected")
	}
	if _, ok := parseRetryAfter("garbage"); ok {
		t.Fatal("expected garbage rejected")
	}
}

func TestHealthCheck(t *testing.T) {
	var received chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(completionPayload("OK"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if received.Model != "demo" || len(received.Messages) != 1 {
		t.Fatalf("unexpected health request %+v", received)
	}

	if err := NewClient(Config{BaseURL: server.URL}).HealthCheck(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without key, got %v", err)
	}
}
