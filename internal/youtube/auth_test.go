package youtube_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour).UTC()}
	if err := youtube.SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 token file, got %o", info.Mode().Perm())
	}
	loaded, err := youtube.LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken returned error: %v", err)
	}
	if loaded.AccessToken != "a" || loaded.RefreshToken != "r" {
		t.Fatalf("unexpected token: %+v", loaded)
	}
}

func TestLoadTokenMissingIsConfigurationError(t *testing.T) {
	_, err := youtube.LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, youtube.ErrNoToken) || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrNoToken configuration error, got %v", err)
	}
}

func TestOAuthConfigParsesInstalledSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	secret := `{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := youtube.OAuthConfig(path)
	if err != nil {
		t.Fatalf("OAuthConfig returned error: %v", err)
	}
	if cfg.ClientID != "id" || len(cfg.Scopes) != 1 || !strings.Contains(cfg.Scopes[0], "youtube.force-ssl") {
		t.Fatalf("unexpected oauth config: %+v", cfg)
	}
}

func TestOAuthConfigMissingFile(t *testing.T) {
	_, err := youtube.OAuthConfig(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
