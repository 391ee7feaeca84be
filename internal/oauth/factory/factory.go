// Package factory builds the provider registry from configuration.
package factory

import (
	"fmt"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/oauth"
	"github.com/tistre/simple-oauth-login/internal/oauth/generic"
	"github.com/tistre/simple-oauth-login/internal/oauth/github"
)

// BuildRegistry constructs one provider per configured service, in
// configuration order. The optional "provider" key in a service config picks
// the implementation; without it the generic OAuth 2.0 client is used.
func BuildRegistry(settings *auth.Settings) (*oauth.Registry, error) {
	registry := oauth.NewRegistry()

	for _, name := range settings.Services() {
		raw, ok := settings.OAuthConfig(name)
		if !ok {
			continue
		}
		cfg := oauth.ParseClientConfig(raw)

		switch cfg.Provider {
		case "github":
			registry.Register(github.New(name, cfg))
		case "", "generic":
			p, err := generic.New(name, cfg)
			if err != nil {
				return nil, err
			}
			registry.Register(p)
		default:
			return nil, fmt.Errorf("unknown provider type %q for service %s", cfg.Provider, name)
		}
	}

	return registry, nil
}
