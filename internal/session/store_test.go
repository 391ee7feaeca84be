package session

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/tistre/simple-oauth-login/internal/auth"
	cachememory "github.com/tistre/simple-oauth-login/internal/cache/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(cachememory.New(time.Minute), Options{CookieName: "oauth_session", TTL: time.Minute})
}

func TestLoadWithoutCookie(t *testing.T) {
	s := newTestStore(t)

	info, id := s.Load(httptest.NewRequest("GET", "/", nil))
	if !info.Empty() {
		t.Fatalf("expected empty info, got %+v", info)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := &auth.OAuthInfo{
		Authenticated: true,
		Provider:      "github",
		AccessToken:   "tok-1",
		State:         "state-1",
		Mail:          "jane.doe@example.com",
		Name:          "Jane Doe",
		Groups:        []auth.Group{{Name: "admins"}},
	}

	rec := httptest.NewRecorder()
	id, err := s.Save(rec, "", want)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("save must assign an id")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "oauth_session" || cookies[0].Value != id {
		t.Fatalf("cookie: %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("cookie must be HttpOnly")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	got, gotID := s.Load(req)
	if gotID != id {
		t.Fatalf("id: got %q, want %q", gotID, id)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("info:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestSaveKeepsID(t *testing.T) {
	s := newTestStore(t)

	rec := httptest.NewRecorder()
	id, err := s.Save(rec, "fixed-id", &auth.OAuthInfo{State: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "fixed-id" {
		t.Fatalf("id: %q", id)
	}
}

func TestLoadCorruptPayload(t *testing.T) {
	c := cachememory.New(time.Minute)
	s := NewStore(c, Options{CookieName: "oauth_session", TTL: time.Minute})

	c.Set("session:broken", []byte("{not json"), time.Minute)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookieFor("oauth_session", "broken"))

	info, id := s.Load(req)
	if !info.Empty() {
		t.Fatalf("corrupt payload must yield empty info, got %+v", info)
	}
	// id survives so the next save reuses the cookie
	if id != "broken" {
		t.Fatalf("id: %q", id)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	rec := httptest.NewRecorder()
	id, err := s.Save(rec, "", &auth.OAuthInfo{Mail: "a@b"})
	if err != nil {
		t.Fatal(err)
	}

	rec2 := httptest.NewRecorder()
	s.Clear(rec2, id)

	cookies := rec2.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Fatalf("cookie: %+v", cookies)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookieFor("oauth_session", id))
	info, _ := s.Load(req)
	if !info.Empty() {
		t.Fatalf("entry must be gone, got %+v", info)
	}
}

func cookieFor(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}
