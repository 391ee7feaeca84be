// Package login implements the login flow state machine: entry, fake login,
// provider redirect and provider callback. Operations are pure with respect
// to the session: they receive the session snapshot, mutate it, and leave
// persistence to the controller.
package login

import (
	"context"
	"errors"

	"github.com/tistre/simple-oauth-login/internal/auth"
)

// Errors the controller maps to HTTP responses.
var (
	// ErrFakeDisabled: fake login requested but not enabled (404).
	ErrFakeDisabled = errors.New("fake login is disabled")

	// ErrUnknownService: the {service} path segment is not configured (404).
	ErrUnknownService = errors.New("unknown oauth service")

	// ErrStateMismatch: callback state missing or different from the session
	// copy. The stored state is wiped, forcing a fresh login attempt (400).
	ErrStateMismatch = errors.New("state value does not match the one initially sent")

	// ErrAuthURLFailed: the provider authorization URL could not be built (400).
	ErrAuthURLFailed = errors.New("building authorization url failed")

	// ErrExchangeFailed: token exchange or profile fetch failed (400).
	ErrExchangeFailed = errors.New("couldn't get tokens")
)

// StartRequest starts a provider login.
type StartRequest struct {
	Service            string
	RedirectAfterLogin string
	Info               *auth.OAuthInfo
}

// StartResult carries the provider redirect target. The session snapshot in
// the request now holds the state value to validate on callback.
type StartResult struct {
	AuthorizationURL string
}

// CallbackRequest completes a provider login.
type CallbackRequest struct {
	Service string
	Code    string
	State   string
	Info    *auth.OAuthInfo
}

// CallbackResult carries the post-login redirect target. The session
// snapshot now holds the authenticated profile.
type CallbackResult struct {
	RedirectURL string
}

// Service is the login flow.
type Service interface {
	// Entry picks the provider for /login: the first configured one.
	// ok is false when no provider is configured (fake login takes over).
	Entry() (service string, ok bool)

	// Known reports whether a service name is configured. Unknown services
	// get a 404 before any flow step runs.
	Known(service string) bool

	// FakeLogin builds the authenticated fake session record.
	FakeLogin(ctx context.Context) (*auth.OAuthInfo, error)

	// Start generates the anti-CSRF state, stores it with the optional
	// redirect_after_login in the snapshot, and returns the provider URL.
	Start(ctx context.Context, req StartRequest) (*StartResult, error)

	// Callback validates the state, exchanges the code and overwrites the
	// snapshot with the authenticated profile. On ErrStateMismatch the
	// snapshot's state has been cleared and must still be persisted.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}
