package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/description"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/engagement"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

func newGateCommand(ctx *commandContext) *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluate the engagement gate against live counts",
		Long: `Fetches the video's like count and the channel's subscriber count, compares
the weighted threshold with the number of replies in the ledger, and reports
whether the description marker matches the gate. Nothing is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			oauthCfg, err := youtube.OAuthConfig(cfg.YouTube.ClientSecretPath)
			if err != nil {
				return err
			}
			httpClient, err := youtube.HTTPClient(cmd.Context(), oauthCfg, cfg.YouTube.TokenPath, nil)
			if err != nil {
				return err
			}
			logger, closer, err := logging.NewFromConfig(cfg, "")
			if err != nil {
				return err
			}
			defer logging.CloseQuietly(closer)

			clientOpts := []youtube.Option{youtube.WithLogger(logger)}
			if strings.TrimSpace(endpoint) != "" {
				clientOpts = append(clientOpts, youtube.WithEndpoint(endpoint))
			}
			client, err := youtube.NewClient(cmd.Context(), httpClient, clientOpts...)
			if err != nil {
				return err
			}

			video, err := client.Video(cmd.Context(), cfg.YouTube.VideoID)
			if err != nil {
				return fmt.Errorf("fetch video: %w", err)
			}
			channel, err := client.Channel(cmd.Context(), video.ChannelID)
			if err != nil {
				return fmt.Errorf("fetch channel: %w", err)
			}
			l, err := loadLedger(cmd, cfg)
			if err != nil {
				return err
			}

			decision := engagement.Evaluate(int64(l.Len()), video.LikeCount, channel.SubscriberCount,
				cfg.Engagement.LikePower, cfg.Engagement.SubscribePower)

			rows := [][]string{
				{"Video", video.Title},
				{"Likes", strconv.FormatInt(video.LikeCount, 10)},
				{"Subscribers", strconv.FormatInt(channel.SubscriberCount, 10)},
				{"Replied", strconv.FormatInt(decision.Replied, 10)},
				{"Threshold", strconv.FormatInt(decision.Threshold, 10)},
				{"State", decision.State()},
				{"Remaining", strconv.FormatInt(decision.Remaining(), 10)},
				{"Marker", markerState(video.Description, cfg.Engagement.DescriptionText, decision.Open)},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Gate", "Value"}, rows, nil, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "api-endpoint", "", "YouTube Data API root override")
	_ = cmd.Flags().MarkHidden("api-endpoint")
	return cmd
}

// markerState describes the marker and what the next cycle does to it.
func markerState(current, marker string, gateOpen bool) string {
	if marker == "" {
		return "disabled"
	}
	present := description.HasMarker(current, marker)
	_, changed := description.Sync(current, marker, gateOpen)
	switch {
	case !changed && present:
		return "present (in sync)"
	case !changed:
		return "absent (in sync)"
	case present:
		return "present (next cycle removes it)"
	default:
		return "absent (next cycle adds it)"
	}
}
