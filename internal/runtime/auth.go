// internal/runtime/auth.go
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"

	"github.com/joshsymonds/flairbot/internal/config"
	"github.com/joshsymonds/flairbot/internal/reddit"
)

// Endpoints locates the Reddit token service and OAuth API host.
type Endpoints struct {
	TokenURL string
	APIBase  string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		TokenURL: "https://www.reddit.com/api/v1/access_token",
		APIBase:  "https://oauth.reddit.com",
	}
}

// NewRedditClient exchanges the configured credentials for a session and
// returns a client whose requests carry the session token. The first token
// is fetched eagerly so bad credentials fail at startup.
func NewRedditClient(ctx context.Context, cfg config.Config, ep Endpoints) (reddit.Client, error) {
	base := &http.Client{Transport: userAgentTransport{agent: cfg.UserAgent, base: http.DefaultTransport}}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	oc := &oauth2.Config{
		ClientID:     cfg.AppID,
		ClientSecret: cfg.AppSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  ep.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	var ts oauth2.TokenSource
	switch cfg.AuthType {
	case config.AuthWebapp:
		ts = oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	default:
		ts = oauth2.ReuseTokenSource(nil, passwordSource{
			ctx:      ctx,
			conf:     oc,
			username: cfg.Username,
			password: cfg.Password,
		})
	}
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("obtain access token: %w", err)
	}
	return NewRedditAPIClient(oauth2.NewClient(ctx, ts), ep.APIBase), nil
}

// passwordSource repeats the password grant whenever the cached token
// expires; Reddit issues no refresh token for it.
type passwordSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (p passwordSource) Token() (*oauth2.Token, error) {
	tok, err := p.conf.PasswordCredentialsToken(p.ctx, p.username, p.password)
	if err != nil {
		return nil, fmt.Errorf("password grant for %s: %w", p.username, err)
	}
	return tok, nil
}

// userAgentTransport stamps every request; Reddit throttles generic agents.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(r)
}

func DefaultLogger() *slog.Logger {
	return NewLogger(slog.LevelInfo)
}

func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
