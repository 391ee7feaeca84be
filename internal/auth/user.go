package auth

import "strings"

// AnonymousUsername is the fixed username used when no identity is known.
// Callers must treat it as the "not found" signal; see Settings.UserByUsername.
const AnonymousUsername = "anonymous"

// User is the request-scoped identity the guard hands to protected handlers.
// It is derived from OAuthInfo and the configured user details and is never
// persisted (the session stores OAuthInfo, not User).
type User struct {
	mail  string
	name  string
	roles []string
}

// NewUser creates a User. An empty mail yields the anonymous user.
func NewUser(mail, name string, roles []string) *User {
	return &User{mail: mail, name: name, roles: roles}
}

// Username returns the mail, or AnonymousUsername when no mail is known.
// It is never empty.
func (u *User) Username() string {
	if u.mail != "" {
		return u.mail
	}
	return AnonymousUsername
}

// Mail returns the user's mail address (may be empty).
func (u *User) Mail() string {
	return u.mail
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.name != "" {
		return u.name
	}
	return u.Username()
}

// Roles returns the granted roles.
func (u *User) Roles() []string {
	return u.roles
}

// Anonymous reports whether this is the anonymous user.
func (u *User) Anonymous() bool {
	return u.mail == ""
}

// WithProfile returns a copy with mail and name replaced.
func (u *User) WithProfile(mail, name string) *User {
	return &User{mail: mail, name: name, roles: u.roles}
}

// WithRoles returns a copy with the roles replaced.
func (u *User) WithRoles(roles []string) *User {
	return &User{mail: u.mail, name: u.name, roles: roles}
}

// RolesFromGroups derives role names from provider groups: each group name is
// uppercased and prefixed with "ROLE_". Group names containing spaces or
// other characters invalid in a role pass through unchanged; the shape of
// provider group names is not validated here. Known limitation.
func RolesFromGroups(groups []Group) []string {
	if len(groups) == 0 {
		return nil
	}
	roles := make([]string, 0, len(groups))
	for _, g := range groups {
		roles = append(roles, "ROLE_"+strings.ToUpper(g.Name))
	}
	return roles
}
