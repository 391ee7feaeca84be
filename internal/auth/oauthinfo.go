// Package auth holds the authentication data model: the session-persisted
// OAuthInfo record, the request-scoped User, and the Settings holder backed
// by static configuration.
package auth

// Session map keys for OAuthInfo. The session store persists OAuthInfo in its
// map form, so these names are part of the stored format.
const (
	keyAuthenticated      = "authenticated"
	keyProvider           = "provider"
	keyAccessToken        = "access_token"
	keyState              = "state"
	keyRedirectAfterLogin = "redirect_after_login"
	keyMail               = "mail"
	keyName               = "name"
	keyImage              = "image"
	keyURL                = "url"
	keyGroups             = "groups"
)

// Group is a group membership reported by the OAuth provider.
type Group struct {
	Name string
}

// OAuthInfo is the session-persisted record produced by a login attempt.
// A zero OAuthInfo means "no credentials": not authenticated, no profile.
type OAuthInfo struct {
	Authenticated      bool
	Provider           string
	AccessToken        string
	State              string
	RedirectAfterLogin string
	Mail               string
	Name               string
	Image              string
	URL                string
	Groups             []Group
}

// NewOAuthInfo builds an OAuthInfo from its stored map form. The input is
// untrusted session data: missing or wrongly typed entries are ignored, a nil
// map yields an empty record.
func NewOAuthInfo(m map[string]any) *OAuthInfo {
	info := &OAuthInfo{}
	if m == nil {
		return info
	}
	info.Authenticated, _ = m[keyAuthenticated].(bool)
	info.Provider = stringAt(m, keyProvider)
	info.AccessToken = stringAt(m, keyAccessToken)
	info.State = stringAt(m, keyState)
	info.RedirectAfterLogin = stringAt(m, keyRedirectAfterLogin)
	info.Mail = stringAt(m, keyMail)
	info.Name = stringAt(m, keyName)
	info.Image = stringAt(m, keyImage)
	info.URL = stringAt(m, keyURL)
	info.Groups = groupsAt(m, keyGroups)
	return info
}

// Map returns the stored map form. NewOAuthInfo(info.Map()) round-trips
// losslessly for every field.
func (info *OAuthInfo) Map() map[string]any {
	groups := make([]any, 0, len(info.Groups))
	for _, g := range info.Groups {
		groups = append(groups, map[string]any{"name": g.Name})
	}
	return map[string]any{
		keyAuthenticated:      info.Authenticated,
		keyProvider:           info.Provider,
		keyAccessToken:        info.AccessToken,
		keyState:              info.State,
		keyRedirectAfterLogin: info.RedirectAfterLogin,
		keyMail:               info.Mail,
		keyName:               info.Name,
		keyImage:              info.Image,
		keyURL:                info.URL,
		keyGroups:             groups,
	}
}

// Empty reports whether the record carries no credentials at all.
// An empty record triggers the bearer-token fallback in the guard.
func (info *OAuthInfo) Empty() bool {
	return !info.Authenticated && info.Provider == "" && info.AccessToken == "" &&
		info.State == "" && info.Mail == ""
}

func stringAt(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// groupsAt accepts both the canonical shape ([]{"name": ...}) and plain
// string lists (roles copied verbatim by the bearer fallback).
func groupsAt(m map[string]any, key string) []Group {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	groups := make([]Group, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[string]any:
			if name := stringAt(v, "name"); name != "" {
				groups = append(groups, Group{Name: name})
			}
		case string:
			if v != "" {
				groups = append(groups, Group{Name: v})
			}
		}
	}
	if len(groups) == 0 {
		return nil
	}
	return groups
}
