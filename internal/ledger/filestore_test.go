package ledger_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/ledger"
)

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	store := ledger.NewFileStore(t.TempDir(), nil)
	l, err := store.Load(context.Background(), "vid")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d", l.Len())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := ledger.NewFileStore(dir, nil)
	ctx := context.Background()

	l := ledger.New()
	l.Add("c1")
	l.Add("c2")
	if err := store.Save(ctx, "vid", l); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "replied_to_vid.json")); err != nil {
		t.Fatalf("expected ledger file: %v", err)
	}

	loaded, err := store.Load(ctx, "vid")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Len() != 2 || !loaded.Contains("c1") || !loaded.Contains("c2") {
		t.Fatalf("unexpected loaded ids: %v", loaded.IDs())
	}

	other, err := store.Load(ctx, "other")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if other.Len() != 0 {
		t.Fatalf("expected ledgers keyed per video, got %v", other.IDs())
	}
}

func TestFileStoreAcceptsBareIDList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "replied_to_vid.json"), []byte(`["a","b"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := ledger.NewFileStore(dir, nil).Load(context.Background(), "vid")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", l.Len())
	}
}

func TestFileStoreCorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "replied_to_vid.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ledger.NewFileStore(dir, nil).Load(context.Background(), "vid")
	if err == nil || !strings.Contains(err.Error(), "parse ledger file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
