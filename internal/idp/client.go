// Package idp is a thin client for the OpenID Connect identity provider
// (a Keycloak-style realm). The provider is a black box: this client only
// builds the login redirect, exchanges authorization codes, and terminates
// sessions.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrExchangeFailed is returned when the provider rejects a token request.
var ErrExchangeFailed = errors.New("token exchange failed")

// Config identifies this application to the provider.
type Config struct {
	Issuer       string // provider base URL
	Realm        string
	ClientID     string
	ClientSecret string
}

// TokenResponse is the provider's answer to an authorization-code exchange.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
	IDToken          string `json:"id_token,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

// Client talks to one realm of the provider.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a provider client.
func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) realmURL(path string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/%s",
		c.cfg.Issuer, url.PathEscape(c.cfg.Realm), path)
}

// AuthorizationURL builds the login page URL the browser is redirected to.
func (c *Client) AuthorizationURL(redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	return c.realmURL("auth") + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	body, err := c.postForm(ctx, c.realmURL("token"), form)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExchangeFailed, err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", ErrExchangeFailed)
	}
	return &tokens, nil
}

// Logout terminates the provider-side session behind a refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)

	_, err := c.postForm(ctx, c.realmURL("logout"), form)
	return err
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrExchangeFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: provider returned %d: %s",
			ErrExchangeFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
