package graphql

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jw6ventures/callhistory/internal/config"
)

const upstreamTimeout = 30 * time.Second

// NewHTTPClient returns the HTTP client used to reach the calls API. It
// attaches a bearer token from, in order of preference: a static
// APP_API_TOKEN, or an OAuth2 client-credentials grant whose token endpoint
// is either configured or discovered from the issuer's OIDC metadata.
// Without credentials requests go out unauthenticated.
func NewHTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	base := &http.Client{Timeout: upstreamTimeout}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	switch {
	case cfg.API.Token != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.API.Token, TokenType: "Bearer"})
		return withTimeout(oauth2.NewClient(ctx, src)), nil

	case cfg.API.ClientID != "":
		tokenURL, err := resolveTokenURL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cc := &clientcredentials.Config{
			ClientID:     cfg.API.ClientID,
			ClientSecret: cfg.API.ClientSecret,
			TokenURL:     tokenURL,
		}
		return withTimeout(cc.Client(ctx)), nil

	default:
		return base, nil
	}
}

func resolveTokenURL(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.API.TokenURL != "" {
		return cfg.API.TokenURL, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.API.IssuerURL)
	if err != nil {
		return "", fmt.Errorf("discover token endpoint for %s: %w", cfg.API.IssuerURL, err)
	}
	tokenURL := provider.Endpoint().TokenURL
	if tokenURL == "" {
		return "", fmt.Errorf("issuer %s does not advertise a token endpoint", cfg.API.IssuerURL)
	}
	return tokenURL, nil
}

func withTimeout(c *http.Client) *http.Client {
	c.Timeout = upstreamTimeout
	return c
}
