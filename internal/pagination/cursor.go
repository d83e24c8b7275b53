// Package pagination walks a video's comment threads newest first, one page
// per call, until the listing runs out or the reply cycle asks it to stop.
package pagination

import (
	"context"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

// PageFetcher lists one page of comment threads.
type PageFetcher interface {
	CommentThreads(ctx context.Context, q youtube.ThreadQuery) (youtube.CommentPage, error)
}

// Query selects the comment threads to walk.
type Query struct {
	VideoID  string
	Keyword  string
	PageSize int64
}

// Cursor lazily fetches pages. It is single-use: build a new one per cycle.
type Cursor struct {
	fetcher PageFetcher
	query   Query
	token   string
	started bool
	done    bool
	pages   int
}

// New returns a cursor positioned before the first page. Page size defaults
// to and is capped at youtube.MaxPageSize.
func New(fetcher PageFetcher, q Query) *Cursor {
	if q.PageSize <= 0 || q.PageSize > youtube.MaxPageSize {
		q.PageSize = youtube.MaxPageSize
	}
	return &Cursor{fetcher: fetcher, query: q}
}

// Next fetches the following page. It returns false once the listing has no
// continuation token or Stop was called. Fetch errors are returned as is and
// end the cursor.
func (c *Cursor) Next(ctx context.Context) (youtube.CommentPage, bool, error) {
	if c.done {
		return youtube.CommentPage{}, false, nil
	}
	if c.started && c.token == "" {
		c.done = true
		return youtube.CommentPage{}, false, nil
	}

	page, err := c.fetcher.CommentThreads(ctx, youtube.ThreadQuery{
		VideoID:   c.query.VideoID,
		Keyword:   c.query.Keyword,
		PageSize:  c.query.PageSize,
		PageToken: c.token,
	})
	if err != nil {
		c.done = true
		return youtube.CommentPage{}, false, err
	}
	c.started = true
	c.pages++
	c.token = page.NextPageToken
	return page, true, nil
}

// Stop ends the walk; later Next calls report exhaustion without fetching.
func (c *Cursor) Stop() {
	c.done = true
}

// Pages returns how many pages were fetched.
func (c *Cursor) Pages() int {
	return c.pages
}
