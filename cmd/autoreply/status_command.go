package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/daemonrun"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkGenerator bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, credential, and ledger status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Daemon", colorize)
			lines = append(lines, daemonStatusLine(cfg, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Credentials", colorize)...)
			lines = append(lines, credentialStatusLines(cfg, colorize)...)
			if checkGenerator {
				lines = append(lines, generatorStatusLine(cmd, cfg, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Ledger", colorize)...)
			if l, err := loadLedger(cmd, cfg); err != nil {
				lines = append(lines, renderStatusLine("Replies", statusError, err.Error(), colorize))
			} else {
				msg := fmt.Sprintf("%d answered (%s backend)", l.Len(), cfg.Ledger.Backend)
				if entries := l.Entries(); len(entries) > 0 && !entries[0].RepliedAt.IsZero() {
					msg += ", last " + entries[0].RepliedAt.Local().Format(time.DateTime)
				}
				lines = append(lines, renderStatusLine("Replies", statusInfo, msg, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			lines = append(lines, configStatusLines(cfg, colorize)...)

			writeLines(out, lines)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkGenerator, "check-generator", false, "Verify the generator key and model with the backend")
	return cmd
}

func generatorStatusLine(cmd *cobra.Command, cfg *config.Config, colorize bool) string {
	checkCtx, cancel := context.WithTimeout(cmd.Context(), generatorCheckTimeout)
	defer cancel()
	if err := daemonrun.CheckGenerator(checkCtx, cfg); err != nil {
		return renderStatusLine("Generator", statusError, err.Error(), colorize)
	}
	gen := cfg.GetGenerator()
	return renderStatusLine("Generator", statusOK, strings.TrimSpace(gen.Backend+" "+gen.Model), colorize)
}

const generatorCheckTimeout = 30 * time.Second

func daemonStatusLine(cfg *config.Config, colorize bool) string {
	pid, err := daemonrun.ReadPID(cfg.PIDPath())
	if err != nil {
		return renderStatusLine("Daemon", statusWarn, err.Error(), colorize)
	}
	if pid == 0 {
		return renderStatusLine("Daemon", statusInfo, "Not running", colorize)
	}
	if !processAlive(pid) {
		return renderStatusLine("Daemon", statusWarn, fmt.Sprintf("Stale pid file (pid %d)", pid), colorize)
	}
	return renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", pid), colorize)
}

func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func credentialStatusLines(cfg *config.Config, colorize bool) []string {
	var lines []string
	if _, err := youtube.OAuthConfig(cfg.YouTube.ClientSecretPath); err != nil {
		lines = append(lines, renderStatusLine("Client secret", statusError, err.Error(), colorize))
	} else {
		lines = append(lines, renderStatusLine("Client secret", statusOK, cfg.YouTube.ClientSecretPath, colorize))
	}

	tok, err := youtube.LoadToken(cfg.YouTube.TokenPath)
	switch {
	case errors.Is(err, youtube.ErrNoToken):
		lines = append(lines, renderStatusLine("OAuth token", statusWarn, "Missing (run 'autoreply auth')", colorize))
	case err != nil:
		lines = append(lines, renderStatusLine("OAuth token", statusError, err.Error(), colorize))
	case tok.RefreshToken == "":
		lines = append(lines, renderStatusLine("OAuth token", statusWarn, "No refresh token", colorize))
	default:
		lines = append(lines, renderStatusLine("OAuth token", statusOK, cfg.YouTube.TokenPath, colorize))
	}
	return lines
}

func configStatusLines(cfg *config.Config, colorize bool) []string {
	gen := cfg.GetGenerator()
	keyword := cfg.YouTube.Keyword
	if strings.TrimSpace(keyword) == "" {
		keyword = "(all comments)"
	}
	marker := "disabled"
	if cfg.Engagement.DescriptionText != "" {
		marker = fmt.Sprintf("%q", cfg.Engagement.DescriptionText)
	}
	webhookKind := statusInfo
	webhook := "not configured"
	if cfg.Notifications.WebhookURL != "" {
		webhookKind = statusOK
		webhook = fmt.Sprintf("platform=%s generation=%s", yesNo(cfg.Notifications.PlatformErrors), yesNo(cfg.Notifications.GenerationErrors))
	}
	metricsMsg := "disabled"
	if cfg.Metrics.Bind != "" {
		metricsMsg = cfg.Metrics.Bind
	}
	return []string{
		renderStatusLine("Video", statusInfo, cfg.YouTube.VideoID, colorize),
		renderStatusLine("Keyword", statusInfo, keyword, colorize),
		renderStatusLine("Gate weights", statusInfo, fmt.Sprintf("like=%d subscribe=%d", cfg.Engagement.LikePower, cfg.Engagement.SubscribePower), colorize),
		renderStatusLine("Marker", statusInfo, marker, colorize),
		renderStatusLine("Generator", statusInfo, fmt.Sprintf("%s %s", gen.Backend, gen.Model), colorize),
		renderStatusLine("Poll interval", statusInfo, fmt.Sprintf("%ds", cfg.Workflow.PollInterval), colorize),
		renderStatusLine("Webhook", webhookKind, webhook, colorize),
		renderStatusLine("Metrics", statusInfo, metricsMsg, colorize),
	}
}
