package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

// FakePlatform serves canned comment pages and records replies and updates.
// Pages are served in order on every walk that starts without a page token.
type FakePlatform struct {
	mu sync.Mutex

	Pages       [][]youtube.Comment
	Snapshot    youtube.Video
	Subscribers int64
	ListErr     error
	ChannelErr  error

	ListCalls  int
	VideoCalls int
	Queries    []youtube.ThreadQuery
	Replies    map[string]string
	Updates    []youtube.VideoUpdate
}

func (f *FakePlatform) CommentThreads(_ context.Context, q youtube.ThreadQuery) (youtube.CommentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	f.Queries = append(f.Queries, q)
	if f.ListErr != nil {
		return youtube.CommentPage{}, f.ListErr
	}
	idx := 0
	if q.PageToken != "" {
		if _, err := fmt.Sscanf(q.PageToken, "page-%d", &idx); err != nil {
			return youtube.CommentPage{}, err
		}
	}
	if idx >= len(f.Pages) {
		return youtube.CommentPage{}, nil
	}
	page := youtube.CommentPage{Comments: append([]youtube.Comment(nil), f.Pages[idx]...)}
	if idx+1 < len(f.Pages) {
		page.NextPageToken = fmt.Sprintf("page-%d", idx+1)
	}
	return page, nil
}

func (f *FakePlatform) Video(_ context.Context, _ string) (youtube.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VideoCalls++
	return f.Snapshot, nil
}

func (f *FakePlatform) Channel(_ context.Context, id string) (youtube.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ChannelErr != nil {
		return youtube.Channel{}, f.ChannelErr
	}
	return youtube.Channel{ID: id, SubscriberCount: f.Subscribers}, nil
}

func (f *FakePlatform) Reply(_ context.Context, parentID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Replies == nil {
		f.Replies = make(map[string]string)
	}
	f.Replies[parentID] = text
	return "reply-" + parentID, nil
}

func (f *FakePlatform) UpdateVideo(_ context.Context, update youtube.VideoUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updates = append(f.Updates, update)
	f.Snapshot.Description = update.Description
	return nil
}

// Calls returns the number of CommentThreads calls so far.
func (f *FakePlatform) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ListCalls
}

// ReplyCount returns how many replies were posted.
func (f *FakePlatform) ReplyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Replies)
}

// Comments builds comments with the given ids on video "test-video".
func Comments(ids ...string) []youtube.Comment {
	out := make([]youtube.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, youtube.Comment{ID: id, Author: "viewer " + id, Text: "#ask tell me about " + id, VideoID: "test-video"})
	}
	return out
}

// FakeGenerator echoes prompts, failing when Err is set.
type FakeGenerator struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

func (g *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	if g.Err != nil {
		return "", g.Err
	}
	return "reply to: " + prompt, nil
}
