package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tistre/simple-oauth-login/internal/auth"
	cachememory "github.com/tistre/simple-oauth-login/internal/cache/memory"
	loginctrl "github.com/tistre/simple-oauth-login/internal/http/controllers/login"
	profilectrl "github.com/tistre/simple-oauth-login/internal/http/controllers/profile"
	"github.com/tistre/simple-oauth-login/internal/http/guard"
	loginsvc "github.com/tistre/simple-oauth-login/internal/http/services/login"
	"github.com/tistre/simple-oauth-login/internal/oauth"
	"github.com/tistre/simple-oauth-login/internal/session"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	settings := auth.NewSettings(map[string]any{
		"fake_oauth": map[string]any{"enabled": true, "mail": "jane.doe@example.com"},
		"user_details": map[string]any{
			"jane.doe@example.com": map[string]any{
				"name":    "Jane Doe",
				"roles":   []any{"ROLE_ADMIN"},
				"api_key": "key-123",
			},
		},
	})
	sessions := session.NewStore(cachememory.New(time.Minute), session.Options{
		CookieName: "oauth_session",
		TTL:        time.Minute,
	})
	flow := loginsvc.NewService(loginsvc.Deps{Settings: settings, Registry: oauth.NewRegistry()})

	return NewRouter(RouterDeps{
		Login:         loginctrl.NewController(flow, sessions),
		Profile:       profilectrl.NewController(),
		Authenticator: guard.NewSessionAuthenticator(sessions, settings, "/login"),
		Users:         guard.NewSessionUserProvider(settings),
	})
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/", "/whoami"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestWhoamiWithBearerKey(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer key-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "jane.doe@example.com", body["username"])
	require.Equal(t, "Jane Doe", body["name"])
	require.Equal(t, false, body["anonymous"])
}

func TestFullFakeLoginSession(t *testing.T) {
	h := newTestRouter(t)

	// no providers configured: /login hands over to the fake login
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login/fake", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/login/fake", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// the session now opens the protected pages
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Hello Jane Doe!\n", rec.Body.String())
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":             "/",
		"/":            "/",
		"/login":       "/login",
		"/login/github": "/login/github",
		"/login/2f0a1e9c-8a8f-4f7e-9f2a-aaaaaaaaaaaa": "/login/:param",
		"/login/0123456789abcdef0123456789abcdef":     "/login/:param",
		"/users/42/roles": "/users/:param/roles",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
