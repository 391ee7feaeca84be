package auth

import (
	"reflect"
	"testing"
)

func TestUserAnonymousSentinel(t *testing.T) {
	u := NewUser("", "", nil)
	if !u.Anonymous() {
		t.Fatal("user without mail must be anonymous")
	}
	if u.Username() != AnonymousUsername {
		t.Fatalf("username: got %q, want %q", u.Username(), AnonymousUsername)
	}
	if u.Name() != AnonymousUsername {
		t.Fatalf("name must fall back to username, got %q", u.Name())
	}
}

func TestUserNameFallback(t *testing.T) {
	u := NewUser("jane.doe@example.com", "", nil)
	if u.Anonymous() {
		t.Fatal("user with mail is not anonymous")
	}
	if u.Username() != "jane.doe@example.com" {
		t.Fatalf("username: got %q", u.Username())
	}
	if u.Name() != "jane.doe@example.com" {
		t.Fatalf("name must fall back to mail, got %q", u.Name())
	}

	named := u.WithProfile("jane.doe@example.com", "Jane Doe")
	if named.Name() != "Jane Doe" {
		t.Fatalf("name: got %q", named.Name())
	}
}

func TestUserWithRolesCopies(t *testing.T) {
	u := NewUser("jane.doe@example.com", "Jane", []string{"ROLE_USER"})
	enriched := u.WithRoles([]string{"ROLE_ADMIN"})

	if !reflect.DeepEqual(u.Roles(), []string{"ROLE_USER"}) {
		t.Fatalf("original roles changed: %v", u.Roles())
	}
	if !reflect.DeepEqual(enriched.Roles(), []string{"ROLE_ADMIN"}) {
		t.Fatalf("new roles: %v", enriched.Roles())
	}
	if enriched.Mail() != u.Mail() || enriched.Name() != u.Name() {
		t.Fatal("WithRoles must keep profile")
	}
}

func TestRolesFromGroups(t *testing.T) {
	groups := []Group{{Name: "admins"}, {Name: "Dev Team"}}
	want := []string{"ROLE_ADMINS", "ROLE_DEV TEAM"}
	if got := RolesFromGroups(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("roles: got %v, want %v", got, want)
	}
	if got := RolesFromGroups(nil); got != nil {
		t.Fatalf("no groups must yield nil, got %v", got)
	}
}
