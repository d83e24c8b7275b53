package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

const clientSecretJSON = `{
  "installed": {
    "client_id": "test-client.apps.googleusercontent.com",
    "client_secret": "test-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["urn:ietf:wg:oauth:2.0:oob", "http://localhost"]
  }
}`

// WriteClientSecret writes an installed-app OAuth client secret to path.
func WriteClientSecret(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(clientSecretJSON), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteToken persists a token that stays valid for the test's lifetime.
func WriteToken(t testing.TB, path string) {
	t.Helper()

	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := youtube.SaveToken(path, tok); err != nil {
		t.Fatalf("save token %s: %v", path, err)
	}
}
