package daemonrun

import (
	"log/slog"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
)

// SetStoreOpenerForTests overrides how Wire opens the ledger store.
func SetStoreOpenerForTests(fn func(*config.Config, *slog.Logger) (ledger.Store, error)) func() {
	previous := openStore
	openStore = fn
	return func() {
		openStore = previous
	}
}
