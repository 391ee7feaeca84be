package oauth

import (
	"context"
	"reflect"
	"testing"

	"github.com/tistre/simple-oauth-login/internal/auth"
)

type stubService struct{ name string }

func (s stubService) Name() string                                   { return s.name }
func (s stubService) AuthURL(context.Context, string) (string, error) { return "", nil }
func (s stubService) Exchange(context.Context, string) (*Token, error) {
	return nil, nil
}
func (s stubService) UserDetails(context.Context, string) (*UserInfo, error) {
	return nil, nil
}
func (s stubService) UserGroups(context.Context, string) ([]auth.Group, error) {
	return nil, nil
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.First(); ok {
		t.Fatal("empty registry must have no first provider")
	}

	r.Register(stubService{name: "zulu"})
	r.Register(stubService{name: "alpha"})
	r.Register(stubService{name: "mike"})

	if got := r.Names(); !reflect.DeepEqual(got, []string{"zulu", "alpha", "mike"}) {
		t.Fatalf("names: %v", got)
	}
	first, ok := r.First()
	if !ok || first.Name() != "zulu" {
		t.Fatalf("first: %v %v", first, ok)
	}
	if r.Len() != 3 {
		t.Fatalf("len: %d", r.Len())
	}

	// re-registering keeps the position
	r.Register(stubService{name: "alpha"})
	if got := r.Names(); !reflect.DeepEqual(got, []string{"zulu", "alpha", "mike"}) {
		t.Fatalf("names after re-register: %v", got)
	}

	if _, ok := r.Get("nope"); ok {
		t.Fatal("unknown provider must not be found")
	}
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	if a == "" || b == "" {
		t.Fatal("state must not be empty")
	}
	if a == b {
		t.Fatal("two states must differ")
	}
}

func TestParseClientConfig(t *testing.T) {
	cc := ParseClientConfig(auth.ProviderConfig{
		"provider":      "generic",
		"client_id":     "id",
		"client_secret": "secret",
		"redirect_url":  "https://app/login/x",
		"auth_url":      "https://idp/auth",
		"token_url":     "https://idp/token",
		"userinfo_url":  "https://idp/userinfo",
		"groups_url":    "https://idp/groups",
		"scopes":        []any{"openid", 42, "email"},
		"extra":         "ignored",
	})
	if cc.Provider != "generic" || cc.ClientID != "id" || cc.ClientSecret != "secret" {
		t.Fatalf("client: %+v", cc)
	}
	if cc.TokenURL != "https://idp/token" || cc.GroupsURL != "https://idp/groups" {
		t.Fatalf("endpoints: %+v", cc)
	}
	if !reflect.DeepEqual(cc.Scopes, []string{"openid", "email"}) {
		t.Fatalf("scopes: %v", cc.Scopes)
	}
}
