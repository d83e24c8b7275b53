package youtube

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/fileutil"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/services"
)

// ErrNoToken means the OAuth token file has not been created yet.
var ErrNoToken = errors.New("oauth token missing; run 'autoreply auth'")

// OAuthConfig reads the installed-app client secret and requests the
// force-ssl scope needed to post replies and edit videos.
func OAuthConfig(clientSecretPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "oauth", "read client secret", err)
	}
	cfg, err := google.ConfigFromJSON(data, yt.YoutubeForceSslScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "oauth", "parse client secret", err)
	}
	return cfg, nil
}

// LoadToken reads a persisted token. A missing file returns ErrNoToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", services.ErrConfiguration, ErrNoToken)
		}
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok atomically with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// persistingSource writes refreshed tokens back to disk.
type persistingSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	path   string
	last   string
	onSave func(error)
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		saveErr := SaveToken(p.path, tok)
		if p.onSave != nil {
			p.onSave(saveErr)
		}
	}
	return tok, nil
}

// HTTPClient returns an authorized client backed by the token at tokenPath.
// Refreshed tokens are saved back; onSave, if set, observes each save.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, tokenPath string, onSave func(error)) (*http.Client, error) {
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	src := &persistingSource{
		base:   cfg.TokenSource(ctx, tok),
		path:   tokenPath,
		last:   tok.AccessToken,
		onSave: onSave,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// ConsoleFlow prints the consent URL, reads the authorization code from in,
// exchanges it, and saves the token.
func ConsoleFlow(ctx context.Context, cfg *oauth2.Config, tokenPath string, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}
	url := cfg.AuthCodeURL("autoreply", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open this URL in a browser and authorize access:\n\n%s\n\nPaste the authorization code: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "youtube", "oauth", "exchange authorization code", err)
	}
	if err := SaveToken(tokenPath, tok); err != nil {
		return nil, err
	}
	return tok, nil
}
