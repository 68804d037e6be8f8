// Package auth holds the external login providers.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleDiscoveryURL is Google's OpenID Connect discovery document.
const GoogleDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

// Provider is a login method offered on /login.
type Provider struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// GoogleOptions configures the Google login provider.
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// DiscoveryURL and Endpoint override Google's defaults in tests.
	DiscoveryURL string
	Endpoint     *oauth2.Endpoint
	HTTPClient   *http.Client
}

// Google signs users in with their Google account email.
type Google struct {
	oauth        *oauth2.Config
	discoveryURL string
	httpClient   *http.Client
}

// NewGoogle builds the provider. Client id and secret are required.
func NewGoogle(opts GoogleOptions) (*Google, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, errors.New("google login requires client id and secret")
	}
	endpoint := endpoints.Google
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}
	discovery := opts.DiscoveryURL
	if discovery == "" {
		discovery = GoogleDiscoveryURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Google{
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  opts.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		discoveryURL: discovery,
		httpClient:   client,
	}, nil
}

// AuthCodeURL is where the browser is sent to start the login.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Email exchanges the authorization code and returns the verified account
// email reported by the userinfo endpoint.
func (g *Google) Email(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	var discovery struct {
		UserinfoEndpoint string `json:"userinfo_endpoint"`
	}
	if err := getJSON(ctx, g.httpClient, g.discoveryURL, &discovery); err != nil {
		return "", fmt.Errorf("openid discovery: %w", err)
	}
	if discovery.UserinfoEndpoint == "" {
		return "", errors.New("openid discovery: no userinfo_endpoint")
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := getJSON(ctx, g.oauth.Client(ctx, token), discovery.UserinfoEndpoint, &info); err != nil {
		return "", fmt.Errorf("userinfo: %w", err)
	}
	email := strings.TrimSpace(info.Email)
	if email == "" {
		return "", errors.New("userinfo: no email")
	}
	if !info.EmailVerified {
		return "", fmt.Errorf("userinfo: email %s is not verified", email)
	}
	return email, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
