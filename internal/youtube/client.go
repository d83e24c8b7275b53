package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

// MaxPageSize is the Data API ceiling for commentThreads.list.
const MaxPageSize = 100

// ErrorNotifier receives platform failures before they are returned.
type ErrorNotifier interface {
	NotifyPlatformError(ctx context.Context, err error)
}

// Client wraps the YouTube Data API v3 service. Every call goes through call,
// which tags failures with services error markers and reports them.
type Client struct {
	svc      *yt.Service
	notifier ErrorNotifier
	logger   *slog.Logger
}

type clientOptions struct {
	endpoint string
	notifier ErrorNotifier
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

// WithEndpoint points the client at a different API root (tests).
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// WithNotifier reports platform errors through n.
func WithNotifier(n ErrorNotifier) Option {
	return func(o *clientOptions) { o.notifier = n }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// NewClient builds a Client on top of an authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	apiOpts := []option.ClientOption{option.WithHTTPClient(metrics.InstrumentClient(httpClient, "youtube"))}
	if o.endpoint != "" {
		apiOpts = append(apiOpts, option.WithEndpoint(o.endpoint))
	}
	svc, err := yt.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "new service", "create YouTube service", err)
	}
	return &Client{
		svc:      svc,
		notifier: o.notifier,
		logger:   logging.NewComponentLogger(o.logger, "youtube"),
	}, nil
}

// CommentThreads lists one page of top-level comments, newest first, in plain text.
func (c *Client) CommentThreads(ctx context.Context, q ThreadQuery) (CommentPage, error) {
	size := q.PageSize
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	var page CommentPage
	err := c.call(ctx, "commentThreads.list", func(ctx context.Context) error {
		call := c.svc.CommentThreads.List([]string{"snippet"}).
			VideoId(q.VideoID).
			Order("time").
			TextFormat("plainText").
			MaxResults(size)
		if q.Keyword != "" {
			call = call.SearchTerms(q.Keyword)
		}
		if q.PageToken != "" {
			call = call.PageToken(q.PageToken)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return err
		}
		page.NextPageToken = resp.NextPageToken
		page.Comments = make([]Comment, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item == nil || item.Snippet == nil || item.Snippet.TopLevelComment == nil {
				continue
			}
			top := item.Snippet.TopLevelComment
			comment := Comment{ID: top.Id, VideoID: item.Snippet.VideoId}
			if top.Snippet != nil {
				comment.Author = top.Snippet.AuthorDisplayName
				comment.Text = top.Snippet.TextDisplay
				if comment.VideoID == "" {
					comment.VideoID = top.Snippet.VideoId
				}
			}
			page.Comments = append(page.Comments, comment)
		}
		return nil
	})
	return page, err
}

// Video fetches the snippet and statistics of a video.
func (c *Client) Video(ctx context.Context, id string) (Video, error) {
	var video Video
	err := c.call(ctx, "videos.list", func(ctx context.Context) error {
		resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).Id(id).Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
			return services.Wrap(services.ErrNotFound, "youtube", "videos.list", fmt.Sprintf("video %s not found", id), nil)
		}
		item := resp.Items[0]
		video = Video{
			ID:          item.Id,
			Title:       item.Snippet.Title,
			CategoryID:  item.Snippet.CategoryId,
			Description: item.Snippet.Description,
			ChannelID:   item.Snippet.ChannelId,
		}
		if item.Statistics != nil {
			video.LikeCount = clampCount(item.Statistics.LikeCount)
		}
		return nil
	})
	return video, err
}

// Channel fetches a channel's subscriber count. Hidden counts read as zero.
func (c *Client) Channel(ctx context.Context, id string) (Channel, error) {
	var channel Channel
	err := c.call(ctx, "channels.list", func(ctx context.Context) error {
		resp, err := c.svc.Channels.List([]string{"statistics"}).Id(id).Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return services.Wrap(services.ErrNotFound, "youtube", "channels.list", fmt.Sprintf("channel %s not found", id), nil)
		}
		channel.ID = resp.Items[0].Id
		if stats := resp.Items[0].Statistics; stats != nil && !stats.HiddenSubscriberCount {
			channel.SubscriberCount = clampCount(stats.SubscriberCount)
		}
		return nil
	})
	return channel, err
}

// Reply posts text as a reply to parentID and returns the new comment id.
func (c *Client) Reply(ctx context.Context, parentID, text string) (string, error) {
	var id string
	err := c.call(ctx, "comments.insert", func(ctx context.Context) error {
		resp, err := c.svc.Comments.Insert([]string{"snippet"}, &yt.Comment{
			Snippet: &yt.CommentSnippet{ParentId: parentID, TextOriginal: text},
		}).Context(ctx).Do()
		if err != nil {
			return err
		}
		id = resp.Id
		return nil
	})
	return id, err
}

// UpdateVideo rewrites the video's title, category and description.
func (c *Client) UpdateVideo(ctx context.Context, update VideoUpdate) error {
	return c.call(ctx, "videos.update", func(ctx context.Context) error {
		_, err := c.svc.Videos.Update([]string{"snippet"}, &yt.Video{
			Id: update.ID,
			Snippet: &yt.VideoSnippet{
				Title:       update.Title,
				CategoryId:  update.CategoryID,
				Description: update.Description,
			},
		}).Context(ctx).Do()
		return err
	})
}

// call runs fn under a fresh request id, classifies any failure, reports it
// to the notifier, and returns a services-tagged error. Cancellation is
// returned untouched.
func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	err := fn(ctx)
	if err == nil {
		metrics.PlatformCall(operation, "ok")
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		metrics.PlatformCall(operation, "canceled")
		return err
	}

	wrapped := classify(operation, err)
	metrics.PlatformCall(operation, services.Classify(wrapped))
	logging.WithContext(ctx, c.logger).Debug("youtube call failed",
		logging.String("operation", operation),
		logging.String(logging.FieldErrorKind, services.Classify(wrapped)),
		logging.Error(err))
	if c.notifier != nil {
		c.notifier.NotifyPlatformError(ctx, wrapped)
	}
	return wrapped
}

func classify(operation string, err error) error {
	for _, marker := range []error{services.ErrTransport, services.ErrNotFound, services.ErrConfiguration} {
		if errors.Is(err, marker) {
			return err
		}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("status %d", apiErr.Code)
		if reason := firstReason(apiErr); reason != "" {
			msg += " " + reason
		}
		switch {
		case apiErr.Code == http.StatusForbidden:
			return services.Wrap(services.ErrForbidden, "youtube", operation, msg, err)
		case apiErr.Code == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "youtube", operation, msg, err)
		}
		return services.Wrap(services.ErrTransport, "youtube", operation, msg, err)
	}
	return services.Wrap(services.ErrTransport, "youtube", operation, "request failed", err)
}

func firstReason(apiErr *googleapi.Error) string {
	for _, item := range apiErr.Errors {
		if reason := strings.TrimSpace(item.Reason); reason != "" {
			return reason
		}
	}
	return ""
}

func clampCount(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
