// Package guard implements the per-request authentication pipeline: a fixed
// lifecycle contract (supports, credentials, user resolution, credential
// check, success/failure hooks) driven by a middleware on protected routes.
package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/observability/logger"
)

var (
	// ErrNotAuthenticated: credentials are present but not authenticated.
	// Expected outcome of normal flow; the user is sent to /login.
	ErrNotAuthenticated = errors.New("credentials not authenticated")

	// ErrInvalidUserType: the user provider returned a foreign Principal
	// implementation. Programming-contract violation, aborts the request.
	ErrInvalidUserType = errors.New("user provider must return a *auth.User")

	// ErrUnsupportedUser: RefreshUser was given a foreign Principal.
	ErrUnsupportedUser = errors.New("unsupported user type")
)

// Principal is what the pipeline traffics in. *auth.User is the only
// implementation this system accepts; the interface exists so the provider
// contract (and its violation) stays expressible.
type Principal interface {
	Username() string
	Name() string
	Roles() []string
}

// UserProvider looks up and refreshes users.
type UserProvider interface {
	// LoadUserByUsername never fails: unknown usernames yield the anonymous
	// user, not an error.
	LoadUserByUsername(username string) Principal

	// RefreshUser returns a shallow copy without reloading from any backing
	// store. ErrUnsupportedUser for foreign Principal types.
	RefreshUser(p Principal) (Principal, error)

	// SupportsUser reports whether the provider handles this Principal type.
	SupportsUser(p Principal) bool
}

// Authenticator is the request authentication lifecycle. The middleware
// invokes the operations in order, short-circuiting on failure.
type Authenticator interface {
	// Supports reports whether this authenticator applies to the request.
	Supports(r *http.Request) bool

	// Credentials extracts the session's OAuthInfo, falling back to the
	// bearer API-key lookup. Never nil: an empty record means no credentials.
	Credentials(r *http.Request) *auth.OAuthInfo

	// ResolveUser turns credentials into a User via the provider.
	// ErrInvalidUserType is fatal.
	ResolveUser(creds *auth.OAuthInfo, users UserProvider) (*auth.User, error)

	// CheckCredentials fails with ErrNotAuthenticated unless the credentials
	// are authenticated.
	CheckCredentials(creds *auth.OAuthInfo, user *auth.User) error

	// OnAuthenticationSuccess may write a response override; it reports
	// whether it did. This implementation never does: processing continues.
	OnAuthenticationSuccess(w http.ResponseWriter, r *http.Request, user *auth.User) bool

	// OnAuthenticationFailure writes the failure response (redirect to the
	// login entry point).
	OnAuthenticationFailure(w http.ResponseWriter, r *http.Request, err error)

	// Start directs an unauthenticated request on a protected resource into
	// the authentication process.
	Start(w http.ResponseWriter, r *http.Request, err error)

	// SupportsRememberMe is always false: no remember-me cookies.
	SupportsRememberMe() bool
}

type userCtxKey struct{}

// WithUser injects the authenticated user into the context.
func WithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFrom extracts the authenticated user from the context.
func UserFrom(ctx context.Context) (*auth.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*auth.User)
	return user, ok
}

// Middleware drives the authenticator lifecycle for every request on a
// protected route and injects the resolved user into the context.
func Middleware(a Authenticator, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Supports(r) {
				a.Start(w, r, ErrNotAuthenticated)
				return
			}

			creds := a.Credentials(r)

			user, err := a.ResolveUser(creds, users)
			if err != nil {
				// Contract violation, not a user-facing error.
				logger.From(r.Context()).Error("user resolution failed",
					logger.Layer("guard"), logger.Err(err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if err := a.CheckCredentials(creds, user); err != nil {
				a.OnAuthenticationFailure(w, r, err)
				return
			}

			r = r.WithContext(WithUser(r.Context(), user))
			if a.OnAuthenticationSuccess(w, r, user) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
