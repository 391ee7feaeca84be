// Package session stores the OAuthInfo record server-side, keyed by an
// opaque session id carried in a cookie. Handlers read the record at entry
// and write it back at exit; the record itself never leaves the server.
package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/cache"
)

// InfoKey is the logical session key under which OAuthInfo is stored.
const InfoKey = "oauth_info"

const keyPrefix = "session:"

// Options configure the session cookie and entry lifetime.
type Options struct {
	CookieName string
	Domain     string
	SameSite   string // "lax" | "strict" | "none"
	Secure     bool
	TTL        time.Duration
}

// Store persists sessions in a cache backend (memory or redis).
type Store struct {
	cache cache.Cache
	opts  Options
}

func NewStore(c cache.Cache, opts Options) *Store {
	if opts.CookieName == "" {
		opts.CookieName = "oauth_session"
	}
	if opts.TTL == 0 {
		opts.TTL = 12 * time.Hour
	}
	return &Store{cache: c, opts: opts}
}

// Load reads the session for the request. It never fails: a missing cookie,
// expired entry or corrupt payload all yield an empty OAuthInfo. The
// returned id is reused on save so the cookie stays stable.
func (s *Store) Load(r *http.Request) (*auth.OAuthInfo, string) {
	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return auth.NewOAuthInfo(nil), ""
	}

	id := cookie.Value
	b, ok := s.cache.Get(keyPrefix + id)
	if !ok {
		return auth.NewOAuthInfo(nil), id
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return auth.NewOAuthInfo(nil), id
	}
	return auth.NewOAuthInfo(m), id
}

// Save writes the record back and (re)issues the cookie. An empty id starts
// a fresh session.
func (s *Store) Save(w http.ResponseWriter, id string, info *auth.OAuthInfo) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	b, err := json.Marshal(info.Map())
	if err != nil {
		return "", err
	}
	s.cache.Set(keyPrefix+id, b, s.opts.TTL)

	http.SetCookie(w, s.cookie(id, int(s.opts.TTL.Seconds())))
	return id, nil
}

// Clear drops the session entry and expires the cookie.
func (s *Store) Clear(w http.ResponseWriter, id string) {
	if id != "" {
		s.cache.Delete(keyPrefix + id)
	}
	http.SetCookie(w, s.cookie("", -1))
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   s.opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: parseSameSite(s.opts.SameSite),
	}
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
