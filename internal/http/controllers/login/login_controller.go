// Package login exposes the login flow over HTTP: entry redirect, fake
// login, provider redirect and provider callback.
package login

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tistre/simple-oauth-login/internal/observability/logger"
	"github.com/tistre/simple-oauth-login/internal/session"
	svc "github.com/tistre/simple-oauth-login/internal/http/services/login"
)

// Controller handles the /login routes. Session state is loaded at entry
// and saved at exit; the flow logic lives in the service.
type Controller struct {
	service  svc.Service
	sessions *session.Store
}

// NewController creates the login controller.
func NewController(service svc.Service, sessions *session.Store) *Controller {
	return &Controller{service: service, sessions: sessions}
}

// Login handles GET /login and GET /login/: redirect to the first
// configured provider, or to the fake login when none is configured.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	if name, ok := c.service.Entry(); ok {
		http.Redirect(w, r, "/login/"+name, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login/fake", http.StatusFound)
}

// FakeLogin handles GET /login/fake. 404 when the fake login is disabled.
func (c *Controller) FakeLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.FakeLogin"))

	info, err := c.service.FakeLogin(ctx)
	if err != nil {
		writeNotFound(w)
		return
	}

	_, id := c.sessions.Load(r)
	if _, err := c.sessions.Save(w, id, info); err != nil {
		log.Error("failed to save session", logger.Err(err))
		writeClientError(w)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// ServiceLogin handles /login/{service}: the provider redirect (no code or
// error parameter), the callback (code) and the provider error (error).
// Unknown services are a 404; anything but GET is a 400.
func (c *Controller) ServiceLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "service")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("LoginController.ServiceLogin"),
		logger.Service(name),
	)

	if !c.service.Known(name) {
		writeNotFound(w)
		return
	}

	if r.Method != http.MethodGet {
		log.Error("unsupported request method", logger.Method(r.Method))
		writeClientError(w)
		return
	}

	q := r.URL.Query()
	switch {
	case q.Has("code"):
		c.callback(w, r, name)
	case q.Has("error"):
		log.Error("service returned error", logger.String("error", q.Get("error")))
		writeClientError(w)
	default:
		c.start(w, r, name)
	}
}

// start redirects the browser to the provider authorization URL, persisting
// the anti-CSRF state and the optional redirect_after_login.
func (c *Controller) start(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.start"), logger.Service(name))

	info, id := c.sessions.Load(r)
	result, err := c.service.Start(ctx, svc.StartRequest{
		Service:            name,
		RedirectAfterLogin: r.URL.Query().Get("redirect_after_login"),
		Info:               info,
	})
	if err != nil {
		if errors.Is(err, svc.ErrUnknownService) {
			writeNotFound(w)
			return
		}
		log.Error("failed to start login", logger.Err(err))
		writeClientError(w)
		return
	}

	if _, err := c.sessions.Save(w, id, info); err != nil {
		log.Error("failed to save session", logger.Err(err))
		writeClientError(w)
		return
	}

	http.Redirect(w, r, result.AuthorizationURL, http.StatusFound)
}

// callback validates the returned state and completes the login.
func (c *Controller) callback(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.callback"), logger.Service(name))

	q := r.URL.Query()
	info, id := c.sessions.Load(r)

	result, err := c.service.Callback(ctx, svc.CallbackRequest{
		Service: name,
		Code:    q.Get("code"),
		State:   q.Get("state"),
		Info:    info,
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUnknownService):
			writeNotFound(w)
		case errors.Is(err, svc.ErrStateMismatch):
			// The snapshot's state was wiped; persist that so the flow has
			// to restart from /login.
			if _, saveErr := c.sessions.Save(w, id, info); saveErr != nil {
				log.Error("failed to save session", logger.Err(saveErr))
			}
			log.Error("state value does not match the one initially sent")
			writeClientError(w)
		default:
			log.Error("something went wrong, couldn't get tokens", logger.Err(err))
			writeClientError(w)
		}
		return
	}

	if _, err := c.sessions.Save(w, id, info); err != nil {
		log.Error("failed to save session", logger.Err(err))
		writeClientError(w)
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}
