package guard

import (
	"fmt"

	"github.com/tistre/simple-oauth-login/internal/auth"
)

// SessionUserProvider serves users from the static configuration. "Not
// found" is not an error here: the anonymous user is the signal, and the
// authenticator enriches it from the credentials.
type SessionUserProvider struct {
	settings *auth.Settings
}

func NewSessionUserProvider(settings *auth.Settings) *SessionUserProvider {
	return &SessionUserProvider{settings: settings}
}

// LoadUserByUsername returns the configured user, or the anonymous user for
// unknown usernames. Never fails.
func (p *SessionUserProvider) LoadUserByUsername(username string) Principal {
	user, _ := p.settings.UserByUsername(username)
	return user
}

// RefreshUser returns a shallow copy without reloading from any backing
// store.
func (p *SessionUserProvider) RefreshUser(pr Principal) (Principal, error) {
	user, ok := pr.(*auth.User)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedUser, pr)
	}
	return auth.NewUser(user.Mail(), user.Name(), user.Roles()), nil
}

// SupportsUser only accepts this system's User type.
func (p *SessionUserProvider) SupportsUser(pr Principal) bool {
	_, ok := pr.(*auth.User)
	return ok
}
