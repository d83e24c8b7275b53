package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

// Store persists ledgers keyed by video id.
type Store interface {
	Load(ctx context.Context, videoID string) (*Ledger, error)
	Save(ctx context.Context, videoID string, l *Ledger) error
	Close() error
}

// Open returns the store selected by ledger.backend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerSQLite:
		return OpenSQLite(cfg.LedgerDBPath(), logger)
	case config.LedgerJSON, "":
		return NewFileStore(cfg.Paths.RootFolder, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "ledger", "open", fmt.Sprintf("unknown backend %q", cfg.Ledger.Backend), nil)
	}
}
