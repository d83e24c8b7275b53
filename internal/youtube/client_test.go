package youtube_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

type recordingNotifier struct {
	mu         sync.Mutex
	errs       []error
	requestIDs []string
}

func (r *recordingNotifier) NotifyPlatformError(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	id, _ := services.RequestIDFromContext(ctx)
	r.requestIDs = append(r.requestIDs, id)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, notifier youtube.ErrorNotifier) *youtube.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := youtube.NewClient(context.Background(), srv.Client(),
		youtube.WithEndpoint(srv.URL+"/"),
		youtube.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestCommentThreadsSendsQueryAndMapsItems(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/commentThreads") {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"videoId":     q.Get("videoId"),
			"order":       q.Get("order"),
			"textFormat":  q.Get("textFormat"),
			"maxResults":  q.Get("maxResults"),
			"searchTerms": q.Get("searchTerms"),
			"pageToken":   q.Get("pageToken"),
		}
		writeJSON(t, w, map[string]any{
			"nextPageToken": "next",
			"items": []any{
				map[string]any{
					"snippet": map[string]any{
						"videoId": "vid",
						"topLevelComment": map[string]any{
							"id": "c1",
							"snippet": map[string]any{
								"authorDisplayName": "alice",
								"textDisplay":       "@bot hello",
							},
						},
					},
				},
			},
		})
	}, nil)

	page, err := client.CommentThreads(context.Background(), youtube.ThreadQuery{
		VideoID: "vid", Keyword: "@bot", PageSize: 500, PageToken: "tok",
	})
	if err != nil {
		t.Fatalf("CommentThreads returned error: %v", err)
	}
	want := map[string]string{
		"videoId": "vid", "order": "time", "textFormat": "plainText",
		"maxResults": "100", "searchTerms": "@bot", "pageToken": "tok",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Fatalf("query %s = %q, want %q", key, gotQuery[key], value)
		}
	}
	if page.NextPageToken != "next" || len(page.Comments) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	c := page.Comments[0]
	if c.ID != "c1" || c.Author != "alice" || c.Text != "@bot hello" || c.VideoID != "vid" {
		t.Fatalf("unexpected comment: %+v", c)
	}
}

func TestCommentThreadsOmitsEmptyKeyword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["searchTerms"]; ok {
			t.Errorf("expected no searchTerms, got %q", r.URL.RawQuery)
		}
		writeJSON(t, w, map[string]any{"items": []any{}})
	}, nil)
	if _, err := client.CommentThreads(context.Background(), youtube.ThreadQuery{VideoID: "vid"}); err != nil {
		t.Fatalf("CommentThreads returned error: %v", err)
	}
}

func TestVideoAndChannelSnapshots(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			writeJSON(t, w, map[string]any{"items": []any{map[string]any{
				"id": "vid",
				"snippet": map[string]any{
					"title": "T", "categoryId": "22", "description": "D", "channelId": "ch",
				},
				"statistics": map[string]any{"likeCount": "12"},
			}}})
		case strings.HasSuffix(r.URL.Path, "/channels"):
			writeJSON(t, w, map[string]any{"items": []any{map[string]any{
				"id":         "ch",
				"statistics": map[string]any{"subscriberCount": "34"},
			}}})
		default:
			http.NotFound(w, r)
		}
	}, nil)

	video, err := client.Video(context.Background(), "vid")
	if err != nil {
		t.Fatalf("Video returned error: %v", err)
	}
	if video.Title != "T" || video.CategoryID != "22" || video.Description != "D" || video.ChannelID != "ch" || video.LikeCount != 12 {
		t.Fatalf("unexpected video: %+v", video)
	}
	channel, err := client.Channel(context.Background(), "ch")
	if err != nil {
		t.Fatalf("Channel returned error: %v", err)
	}
	if channel.SubscriberCount != 34 {
		t.Fatalf("unexpected subscribers: %d", channel.SubscriberCount)
	}
}

func TestVideoNotFound(t *testing.T) {
	notifier := &recordingNotifier{}
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"items": []any{}})
	}, notifier)

	_, err := client.Video(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected notifier call, got %d", notifier.count())
	}
}

func TestReplyAndUpdateBodies(t *testing.T) {
	var insertBody, updateBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/comments"):
			_ = json.Unmarshal(data, &insertBody)
			writeJSON(t, w, map[string]any{"id": "reply1"})
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/videos"):
			_ = json.Unmarshal(data, &updateBody)
			writeJSON(t, w, map[string]any{"id": "vid"})
		default:
			http.NotFound(w, r)
		}
	}, nil)

	id, err := client.Reply(context.Background(), "c1", "hi there")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if id != "reply1" {
		t.Fatalf("unexpected reply id %q", id)
	}
	snippet := insertBody["snippet"].(map[string]any)
	if snippet["parentId"] != "c1" || snippet["textOriginal"] != "hi there" {
		t.Fatalf("unexpected insert body: %v", insertBody)
	}

	if err := client.UpdateVideo(context.Background(), youtube.VideoUpdate{ID: "vid", Title: "T", CategoryID: "22", Description: "new"}); err != nil {
		t.Fatalf("UpdateVideo returned error: %v", err)
	}
	vs := updateBody["snippet"].(map[string]any)
	if updateBody["id"] != "vid" || vs["title"] != "T" || vs["categoryId"] != "22" || vs["description"] != "new" {
		t.Fatalf("unexpected update body: %v", updateBody)
	}
}

func TestForbiddenIsClassifiedAndNotified(t *testing.T) {
	notifier := &recordingNotifier{}
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`)
	}, notifier)

	_, err := client.Reply(context.Background(), "c1", "text")
	if !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected forbidden to count as transport, got %v", err)
	}
	if !strings.Contains(err.Error(), "quotaExceeded") {
		t.Fatalf("expected reason in message, got %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
}

func TestServerErrorIsTransport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, nil)
	_, err := client.CommentThreads(context.Background(), youtube.ThreadQuery{VideoID: "vid"})
	if !errors.Is(err, services.ErrTransport) || errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected plain transport error, got %v", err)
	}
	if services.Classify(err) != "transport" {
		t.Fatalf("unexpected classification %q", services.Classify(err))
	}
}

func TestCanceledContextIsNotNotified(t *testing.T) {
	notifier := &recordingNotifier{}
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"items": []any{}})
	}, notifier)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.CommentThreads(ctx, youtube.ThreadQuery{VideoID: "vid"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if notifier.count() != 0 {
		t.Fatalf("expected no notification on cancel, got %d", notifier.count())
	}
}

func TestFailedCallsCarryDistinctRequestIDs(t *testing.T) {
	var logs bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "debug", Format: "json", Console: &logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	notifier := &recordingNotifier{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	client, err := youtube.NewClient(context.Background(), srv.Client(),
		youtube.WithEndpoint(srv.URL+"/"),
		youtube.WithNotifier(notifier),
		youtube.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, _ = client.Video(context.Background(), "vid")
	_, _ = client.Channel(context.Background(), "chan")

	notifier.mu.Lock()
	ids := append([]string(nil), notifier.requestIDs...)
	notifier.mu.Unlock()
	if len(ids) != 2 || ids[0] == "" || ids[1] == "" || ids[0] == ids[1] {
		t.Fatalf("expected two distinct request ids, got %q", ids)
	}
	if !strings.Contains(logs.String(), `"correlation_id":"`+ids[0]+`"`) {
		t.Fatalf("expected failure log to carry the request id, got %s", logs.String())
	}
}
