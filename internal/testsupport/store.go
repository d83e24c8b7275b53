package testsupport

import (
	"testing"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
)

// MustOpenStore opens the configured ledger store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
