package auth

import "sort"

// ProviderConfig holds one provider's client settings. The contents are
// opaque to this package and handed to the OAuth client layer unchanged.
type ProviderConfig map[string]any

// FakeOAuth configures the development-only fake login.
type FakeOAuth struct {
	Enabled bool
	Mail    string
}

// UserDetails is the static per-username profile from configuration. It
// enriches fake and OAuth logins and authorizes bearer API-key requests.
type UserDetails struct {
	Name   string
	Roles  []string
	APIKey string
}

// Settings is the configuration holder: three sections parsed tolerantly
// from untyped input. Construction never fails; absent or malformed sections
// become empty.
type Settings struct {
	services     []string
	oauthConfigs map[string]ProviderConfig
	fakeOAuth    FakeOAuth
	userDetails  map[string]UserDetails
}

// NewSettings builds Settings from an untyped parameter map, typically the
// decoded `simple_oauth` configuration section. Any section that is missing
// or not a map is treated as empty. Since Go maps carry no insertion order,
// the provider order defaults to sorted names; config loading restores the
// document order via SetServiceOrder.
func NewSettings(params map[string]any) *Settings {
	s := &Settings{
		oauthConfigs: map[string]ProviderConfig{},
		userDetails:  map[string]UserDetails{},
	}
	if params == nil {
		return s
	}

	if raw, ok := params["oauth_configs"].(map[string]any); ok {
		for name, v := range raw {
			cfg, ok := v.(map[string]any)
			if !ok {
				continue
			}
			s.oauthConfigs[name] = ProviderConfig(cfg)
			s.services = append(s.services, name)
		}
		sort.Strings(s.services)
	}

	if raw, ok := params["fake_oauth"].(map[string]any); ok {
		s.fakeOAuth.Enabled, _ = raw["enabled"].(bool)
		s.fakeOAuth.Mail, _ = raw["mail"].(string)
	}

	if raw, ok := params["user_details"].(map[string]any); ok {
		for username, v := range raw {
			det, ok := v.(map[string]any)
			if !ok {
				continue
			}
			entry := UserDetails{}
			entry.Name, _ = det["name"].(string)
			entry.APIKey, _ = det["api_key"].(string)
			if roles, ok := det["roles"].([]any); ok {
				for _, r := range roles {
					if role, ok := r.(string); ok {
						entry.Roles = append(entry.Roles, role)
					}
				}
			}
			s.userDetails[username] = entry
		}
	}

	return s
}

// SetServiceOrder fixes the provider iteration order. Names not present in
// oauth_configs are dropped; configured providers missing from the list keep
// their place at the end in sorted order.
func (s *Settings) SetServiceOrder(names []string) {
	seen := map[string]bool{}
	ordered := make([]string, 0, len(s.oauthConfigs))
	for _, name := range names {
		if _, ok := s.oauthConfigs[name]; ok && !seen[name] {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	for _, name := range s.services {
		if !seen[name] {
			ordered = append(ordered, name)
		}
	}
	s.services = ordered
}

// Services returns the provider names in configuration order.
func (s *Settings) Services() []string {
	return s.services
}

// OAuthConfig returns the named provider's settings.
func (s *Settings) OAuthConfig(name string) (ProviderConfig, bool) {
	cfg, ok := s.oauthConfigs[name]
	return cfg, ok
}

// FakeOAuth returns the fake-login settings.
func (s *Settings) FakeOAuth() FakeOAuth {
	return s.fakeOAuth
}

// UserDetailsMap returns the full username -> details map.
func (s *Settings) UserDetailsMap() map[string]UserDetails {
	return s.userDetails
}

// DetailsByUsername returns the raw configured details for a username.
func (s *Settings) DetailsByUsername(username string) (UserDetails, bool) {
	det, ok := s.userDetails[username]
	return det, ok
}

// UserByUsername synthesizes a User from the configured details. Unknown
// usernames are not an error: the result is the anonymous user and found is
// false. The boundary behavior (always a User, anonymous when unknown) is
// deliberate; found makes the variant explicit for Go callers.
func (s *Settings) UserByUsername(username string) (user *User, found bool) {
	det, ok := s.userDetails[username]
	if !ok {
		return NewUser("", "", nil), false
	}
	return NewUser(username, det.Name, det.Roles), true
}
