// Package generic implements an endpoint-configurable OAuth 2.0 provider.
// It covers Google/GitLab style identity providers: a standard authorization
// code grant plus a JSON userinfo document, with an optional groups endpoint.
package generic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/oauth"
)

// Provider is a generic OAuth 2.0 client built on golang.org/x/oauth2.
type Provider struct {
	name        string
	cfg         *oauth2.Config
	userInfoURL string
	groupsURL   string
	http        *http.Client
}

// New creates a generic provider. auth_url, token_url and userinfo_url are
// required in the client config; groups_url is optional.
func New(name string, cfg oauth.ClientConfig) (*Provider, error) {
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("provider %s: auth_url and token_url are required", name)
	}
	if cfg.UserInfoURL == "" {
		return nil, fmt.Errorf("provider %s: userinfo_url is required", name)
	}
	return &Provider{
		name: name,
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		groupsURL:   cfg.GroupsURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *Provider) Name() string { return p.name }

// AuthURL builds the authorization URL carrying the state value.
func (p *Provider) AuthURL(ctx context.Context, state string) (string, error) {
	return p.cfg.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for an access token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return &oauth.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType()}, nil
}

// UserDetails fetches and maps the userinfo document. Field names follow the
// OIDC userinfo claims with a few common aliases.
func (p *Provider) UserDetails(ctx context.Context, accessToken string) (*oauth.UserInfo, error) {
	var doc map[string]any
	if err := p.getJSON(ctx, p.userInfoURL, accessToken, &doc); err != nil {
		return nil, err
	}
	return &oauth.UserInfo{
		Mail:  firstString(doc, "email", "mail"),
		Name:  firstString(doc, "name", "display_name", "login"),
		Image: firstString(doc, "picture", "avatar_url", "image"),
		URL:   firstString(doc, "profile", "html_url", "url"),
	}, nil
}

// UserGroups fetches the optional groups endpoint. The document may be a
// list of strings or of objects with a "name" key.
func (p *Provider) UserGroups(ctx context.Context, accessToken string) ([]auth.Group, error) {
	if p.groupsURL == "" {
		return nil, nil
	}
	var doc []any
	if err := p.getJSON(ctx, p.groupsURL, accessToken, &doc); err != nil {
		return nil, err
	}
	var groups []auth.Group
	for _, item := range doc {
		switch v := item.(type) {
		case string:
			if v != "" {
				groups = append(groups, auth.Group{Name: v})
			}
		case map[string]any:
			if name, _ := v["name"].(string); name != "" {
				groups = append(groups, auth.Group{Name: name})
			}
		}
	}
	return groups, nil
}

func (p *Provider) getJSON(ctx context.Context, endpoint, accessToken string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("userinfo error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
