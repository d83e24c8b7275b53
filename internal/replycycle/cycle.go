package replycycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/description"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/engagement"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/metrics"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/pagination"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

// Generator produces reply text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Platform is the subset of the YouTube client a cycle needs.
type Platform interface {
	pagination.PageFetcher
	Video(ctx context.Context, id string) (youtube.Video, error)
	Channel(ctx context.Context, id string) (youtube.Channel, error)
	Reply(ctx context.Context, parentID, text string) (string, error)
	UpdateVideo(ctx context.Context, update youtube.VideoUpdate) error
}

// Notifier receives generation failures.
type Notifier interface {
	NotifyGenerationError(ctx context.Context, err error)
}

// Options configures a cycle.
type Options struct {
	VideoID        string
	Keyword        string
	Marker         string
	LikePower      int64
	SubscribePower int64
	PageSize       int64
}

// Result summarises one cycle.
type Result struct {
	Pages              int
	Scanned            int
	Replied            int
	Deferred           int
	DescriptionUpdates int
	StoppedOnSeen      bool
}

// Cycle walks comments and replies while the gate is open. The ledger is
// shared with the caller, which persists it after Run returns.
type Cycle struct {
	platform  Platform
	generator Generator
	notifier  Notifier
	ledger    *ledger.Ledger
	opts      Options
	logger    *slog.Logger
}

// New builds a cycle. A nil notifier disables generation alerts.
func New(platform Platform, generator Generator, notifier Notifier, l *ledger.Ledger, opts Options, logger *slog.Logger) *Cycle {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cycle{
		platform:  platform,
		generator: generator,
		notifier:  notifier,
		ledger:    l,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "replycycle"),
	}
}

// Run processes comments until the listing is exhausted, a seen comment is
// found, or an error aborts the cycle. Replies posted before an error stay in
// the ledger.
func (c *Cycle) Run(ctx context.Context) (Result, error) {
	var result Result
	ctx = services.WithVideoID(ctx, c.opts.VideoID)
	cursor := pagination.New(c.platform, pagination.Query{
		VideoID:  c.opts.VideoID,
		Keyword:  c.opts.Keyword,
		PageSize: c.opts.PageSize,
	})

	for {
		page, ok, err := cursor.Next(ctx)
		result.Pages = cursor.Pages()
		if err != nil {
			return result, fmt.Errorf("list comment threads: %w", err)
		}
		if !ok {
			return result, nil
		}

		for _, comment := range page.Comments {
			if c.ledger.Contains(comment.ID) {
				cursor.Stop()
				result.StoppedOnSeen = true
				logging.WithContext(ctx, c.logger).Debug("reached replied comment, stopping",
					logging.String(logging.FieldCommentID, comment.ID))
				return result, nil
			}
			result.Scanned++
			if err := c.handle(services.WithCommentID(ctx, comment.ID), comment, &result); err != nil {
				return result, err
			}
		}
	}
}

func (c *Cycle) handle(ctx context.Context, comment youtube.Comment, result *Result) error {
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("new comment",
		logging.String("author", comment.Author),
		logging.String("text", comment.Text),
	)

	video, err := c.platform.Video(ctx, c.opts.VideoID)
	if err != nil {
		return fmt.Errorf("fetch video: %w", err)
	}
	channel, err := c.platform.Channel(ctx, video.ChannelID)
	if err != nil {
		return fmt.Errorf("fetch channel: %w", err)
	}

	decision := engagement.Evaluate(int64(c.ledger.Len()), video.LikeCount, channel.SubscriberCount, c.opts.LikePower, c.opts.SubscribePower)
	logger.Debug("engagement gate evaluated",
		logging.String("state", decision.State()),
		logging.Int64("replied", decision.Replied),
		logging.Int64("threshold", decision.Threshold),
		logging.Int64("likes", video.LikeCount),
		logging.Int64("subscribers", channel.SubscriberCount),
	)

	if err := c.syncDescription(ctx, video, decision.Open, result); err != nil {
		return err
	}
	if !decision.Open {
		result.Deferred++
		metrics.CommentDeferred()
		logger.Info("gate charging, reply deferred", logging.Int64("threshold", decision.Threshold))
		return nil
	}

	reply, err := c.generator.Generate(ctx, BuildPrompt(comment.Text, c.opts.Keyword))
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		if !errors.Is(err, services.ErrGeneration) {
			err = services.Wrap(services.ErrGeneration, "replycycle", "generate", "", err)
		}
		if c.notifier != nil {
			c.notifier.NotifyGenerationError(ctx, err)
		}
		return err
	}

	replyID, err := c.platform.Reply(ctx, comment.ID, reply)
	if err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	c.ledger.Add(comment.ID)
	result.Replied++
	metrics.ReplyPosted()
	metrics.SetLedgerSize(c.ledger.Len())
	logger.Info("reply posted",
		logging.String("reply_id", replyID),
		logging.String("reply", reply),
		logging.Int("ledger_size", c.ledger.Len()),
	)
	return nil
}

func (c *Cycle) syncDescription(ctx context.Context, video youtube.Video, gateOpen bool, result *Result) error {
	updated, changed := description.Sync(video.Description, c.opts.Marker, gateOpen)
	if !changed {
		return nil
	}
	id := video.ID
	if id == "" {
		id = c.opts.VideoID
	}
	err := c.platform.UpdateVideo(ctx, youtube.VideoUpdate{
		ID:          id,
		Title:       video.Title,
		CategoryID:  video.CategoryID,
		Description: updated,
	})
	if err != nil {
		return fmt.Errorf("update description: %w", err)
	}
	result.DescriptionUpdates++
	metrics.DescriptionUpdated(gateOpen)
	logging.WithContext(ctx, c.logger).Info("description updated", logging.Bool("gate_open", gateOpen))
	return nil
}
