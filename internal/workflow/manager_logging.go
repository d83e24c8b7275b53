package workflow

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/replycycle"
)

func newCycleID() string {
	return uuid.NewString()
}

func (m *Manager) logCycleFailure(logger *slog.Logger, kind string, result replycycle.Result, err error) {
	logging.ErrorWithContext(logger, "cycle failed", "cycle_failed",
		logging.String(logging.FieldErrorKind, kind),
		logging.String(logging.FieldErrorHint, failureHint(kind)),
		logging.String(logging.FieldImpact, "remaining comments are retried next cycle"),
		logging.Int("replied", result.Replied),
		logging.Int("scanned", result.Scanned),
		logging.Error(err),
	)
}

func failureHint(kind string) string {
	switch kind {
	case "forbidden":
		return "check the OAuth token scopes and the YouTube API quota"
	case "transport":
		return "YouTube API request failed; it is retried after the poll interval"
	case "generation":
		return "check generator.api_key, generator.model and the provider status"
	case "configuration":
		return "fix config.toml and restart"
	case "not_found":
		return "check youtube.video_id"
	default:
		return "check logs for details"
	}
}
