package guard

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/observability/logger"
	"github.com/tistre/simple-oauth-login/internal/session"
)

// fakeProvider marks credentials not produced by a real identity provider.
const fakeProvider = "fake"

// SessionAuthenticator authenticates requests from the session record, with
// a stateless bearer API-key fallback for non-interactive clients.
type SessionAuthenticator struct {
	sessions  *session.Store
	settings  *auth.Settings
	loginPath string
}

// NewSessionAuthenticator creates the authenticator. loginPath is where
// unauthenticated requests are redirected (normally /login).
func NewSessionAuthenticator(sessions *session.Store, settings *auth.Settings, loginPath string) *SessionAuthenticator {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &SessionAuthenticator{sessions: sessions, settings: settings, loginPath: loginPath}
}

// Supports always returns true: the authenticator is unconditionally active
// on protected routes.
func (a *SessionAuthenticator) Supports(r *http.Request) bool {
	return true
}

// Credentials reads the session record. Without one it scans the configured
// user details for a matching api_key from the Authorization header; that
// path is stateless, nothing is written to the session.
func (a *SessionAuthenticator) Credentials(r *http.Request) *auth.OAuthInfo {
	info, _ := a.sessions.Load(r)
	if !info.Empty() {
		return info
	}

	apiKey := bearerToken(r)
	if apiKey == "" {
		return info
	}

	for username, det := range a.settings.UserDetailsMap() {
		if det.APIKey == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(det.APIKey), []byte(apiKey)) != 1 {
			continue
		}

		groups := make([]auth.Group, 0, len(det.Roles))
		for _, role := range det.Roles {
			groups = append(groups, auth.Group{Name: role})
		}
		logger.From(r.Context()).Debug("api key matched",
			logger.Layer("guard"), logger.Username(username))
		return &auth.OAuthInfo{
			Authenticated: true,
			Provider:      fakeProvider,
			Name:          det.Name,
			Mail:          username,
			Groups:        groups,
		}
	}

	return info
}

// ResolveUser looks the user up by the credential mail. When the lookup
// comes back anonymous, mail and name are kept from the credentials and the
// roles are derived from the provider groups.
func (a *SessionAuthenticator) ResolveUser(creds *auth.OAuthInfo, users UserProvider) (*auth.User, error) {
	if creds == nil {
		creds = auth.NewOAuthInfo(nil)
	}

	p := users.LoadUserByUsername(creds.Mail)
	user, ok := p.(*auth.User)
	if !ok {
		return nil, ErrInvalidUserType
	}

	if user.Username() == auth.AnonymousUsername {
		user = user.WithProfile(creds.Mail, creds.Name).WithRoles(auth.RolesFromGroups(creds.Groups))
	}

	return user, nil
}

// CheckCredentials only accepts authenticated credentials.
func (a *SessionAuthenticator) CheckCredentials(creds *auth.OAuthInfo, user *auth.User) error {
	if creds == nil || !creds.Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// OnAuthenticationSuccess never overrides the response.
func (a *SessionAuthenticator) OnAuthenticationSuccess(w http.ResponseWriter, r *http.Request, user *auth.User) bool {
	return false
}

// OnAuthenticationFailure sends the user to the login entry point. Expected
// outcome of normal flow, not logged as an error.
func (a *SessionAuthenticator) OnAuthenticationFailure(w http.ResponseWriter, r *http.Request, err error) {
	http.Redirect(w, r, a.loginPath, http.StatusFound)
}

// Start directs an unauthenticated request into the login flow.
func (a *SessionAuthenticator) Start(w http.ResponseWriter, r *http.Request, err error) {
	http.Redirect(w, r, a.loginPath, http.StatusFound)
}

// SupportsRememberMe is false: remember-me cookies are never issued.
func (a *SessionAuthenticator) SupportsRememberMe() bool {
	return false
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
