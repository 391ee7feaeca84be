// Package github implements OAuth 2.0 authentication with GitHub.
// GitHub uses OAuth 2.0 without ID tokens, so the profile and the user's
// organizations are fetched with separate API calls after the code exchange.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/oauth"
)

const (
	defaultAuthEndpoint  = "https://github.com/login/oauth/authorize"
	defaultTokenEndpoint = "https://github.com/login/oauth/access_token"
	defaultUserEndpoint  = "https://api.github.com/user"
	defaultEmailEndpoint = "https://api.github.com/user/emails"
	defaultOrgsEndpoint  = "https://api.github.com/user/orgs"
)

// Client is the GitHub OAuth 2.0 provider.
type Client struct {
	name         string
	clientID     string
	clientSecret string
	redirectURL  string
	scopes       []string

	authEndpoint  string
	tokenEndpoint string
	userEndpoint  string
	emailEndpoint string
	orgsEndpoint  string

	http *http.Client
}

// New creates a GitHub provider from its client config. Endpoint overrides
// in the config are honored (tests point them at local servers).
func New(name string, cfg oauth.ClientConfig) *Client {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"user:email", "read:user", "read:org"}
	}
	c := &Client{
		name:          name,
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		redirectURL:   cfg.RedirectURL,
		scopes:        scopes,
		authEndpoint:  defaultAuthEndpoint,
		tokenEndpoint: defaultTokenEndpoint,
		userEndpoint:  defaultUserEndpoint,
		emailEndpoint: defaultEmailEndpoint,
		orgsEndpoint:  defaultOrgsEndpoint,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.AuthURL != "" {
		c.authEndpoint = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		c.tokenEndpoint = cfg.TokenURL
	}
	if cfg.UserInfoURL != "" {
		c.userEndpoint = cfg.UserInfoURL
		c.emailEndpoint = cfg.UserInfoURL + "/emails"
	}
	if cfg.GroupsURL != "" {
		c.orgsEndpoint = cfg.GroupsURL
	}
	return c
}

func (g *Client) Name() string { return g.name }

// AuthURL builds the authorization URL for GitHub OAuth.
func (g *Client) AuthURL(ctx context.Context, state string) (string, error) {
	u, err := url.Parse(g.authEndpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client_id", g.clientID)
	q.Set("redirect_uri", g.redirectURL)
	q.Set("scope", strings.Join(g.scopes, " "))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// Exchange trades an authorization code for an access token.
func (g *Client) Exchange(ctx context.Context, code string) (*oauth.Token, error) {
	form := url.Values{}
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.redirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if tr.Error != "" {
		return nil, fmt.Errorf("github oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}

	if tr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response")
	}

	return &oauth.Token{AccessToken: tr.AccessToken, TokenType: tr.TokenType}, nil
}

type userInfo struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

type emailInfo struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// UserDetails fetches the profile. GitHub sometimes returns an empty email
// in the user document, in that case the emails API is consulted.
func (g *Client) UserDetails(ctx context.Context, accessToken string) (*oauth.UserInfo, error) {
	var info userInfo
	if err := g.getJSON(ctx, g.userEndpoint, accessToken, &info); err != nil {
		return nil, err
	}

	mail := info.Email
	if mail == "" {
		email, err := g.primaryEmail(ctx, accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to get email: %w", err)
		}
		mail = email
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &oauth.UserInfo{
		Mail:  mail,
		Name:  name,
		Image: info.AvatarURL,
		URL:   info.HTMLURL,
	}, nil
}

// UserGroups reports the user's organizations as groups.
func (g *Client) UserGroups(ctx context.Context, accessToken string) ([]auth.Group, error) {
	var orgs []struct {
		Login string `json:"login"`
	}
	if err := g.getJSON(ctx, g.orgsEndpoint, accessToken, &orgs); err != nil {
		return nil, err
	}
	var groups []auth.Group
	for _, org := range orgs {
		if org.Login != "" {
			groups = append(groups, auth.Group{Name: org.Login})
		}
	}
	return groups, nil
}

// primaryEmail fetches the primary verified email, falling back to any
// verified one, then to the first listed.
func (g *Client) primaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []emailInfo
	if err := g.getJSON(ctx, g.emailEndpoint, accessToken, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", fmt.Errorf("no email found")
}

func (g *Client) getJSON(ctx context.Context, endpoint, accessToken string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
