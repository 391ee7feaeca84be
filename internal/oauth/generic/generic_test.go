package generic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tistre/simple-oauth-login/internal/oauth"
)

func newTestProvider(t *testing.T, handler http.Handler, withGroups bool) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := oauth.ClientConfig{
		ClientID:     "id-1",
		ClientSecret: "secret-1",
		RedirectURL:  "https://app.example.com/login/idp",
		Scopes:       []string{"openid", "email"},
		AuthURL:      srv.URL + "/authorize",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	}
	if withGroups {
		cfg.GroupsURL = srv.URL + "/groups"
	}
	p, err := New("idp", cfg)
	require.NoError(t, err)
	return p
}

func TestNewRequiresEndpoints(t *testing.T) {
	_, err := New("idp", oauth.ClientConfig{TokenURL: "https://idp/token", UserInfoURL: "https://idp/u"})
	require.Error(t, err)
	_, err = New("idp", oauth.ClientConfig{AuthURL: "https://idp/auth", TokenURL: "https://idp/token"})
	require.Error(t, err)
}

func TestAuthURLCarriesState(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler(), false)

	raw, err := p.AuthURL(context.Background(), "state-abc")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "state-abc", q.Get("state"))
	require.Equal(t, "id-1", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
}

func TestExchangeAndUserDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "code-123", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-xyz",
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-xyz", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"email":   "jane.doe@example.com",
			"name":    "Jane Doe",
			"picture": "https://example.com/pic.png",
			"profile": "https://example.com/jane",
		})
	})
	p := newTestProvider(t, mux, false)

	tok, err := p.Exchange(context.Background(), "code-123")
	require.NoError(t, err)
	require.Equal(t, "tok-xyz", tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)

	info, err := p.UserDetails(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", info.Mail)
	require.Equal(t, "Jane Doe", info.Name)
	require.Equal(t, "https://example.com/pic.png", info.Image)
	require.Equal(t, "https://example.com/jane", info.URL)
}

func TestUserDetailsAliases(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// GitHub-style field names
		_ = json.NewEncoder(w).Encode(map[string]any{
			"mail":       "jane.doe@example.com",
			"login":      "janedoe",
			"avatar_url": "https://example.com/a.png",
			"html_url":   "https://example.com/janedoe",
		})
	})
	p := newTestProvider(t, mux, false)

	info, err := p.UserDetails(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", info.Mail)
	require.Equal(t, "janedoe", info.Name)
	require.Equal(t, "https://example.com/a.png", info.Image)
	require.Equal(t, "https://example.com/janedoe", info.URL)
}

func TestUserGroups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/groups", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]any{
			"admins",
			map[string]any{"name": "devs"},
			map[string]any{"id": 3},
		})
	})
	p := newTestProvider(t, mux, true)

	groups, err := p.UserGroups(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "admins", groups[0].Name)
	require.Equal(t, "devs", groups[1].Name)
}

func TestUserGroupsWithoutEndpoint(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler(), false)

	groups, err := p.UserGroups(context.Background(), "tok")
	require.NoError(t, err)
	require.Nil(t, groups)
}
