// Package profile serves the pages behind the authenticator.
package profile

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tistre/simple-oauth-login/internal/http/guard"
	"github.com/tistre/simple-oauth-login/internal/observability/logger"
)

type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// Index is the landing page for authenticated visitors.
func (c *Controller) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := guard.UserFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Hello %s!\n", user.Name())
}

// Whoami renders the resolved user as JSON. Handy for debugging session
// and API key authentication without a browser.
func (c *Controller) Whoami(w http.ResponseWriter, r *http.Request) {
	user, ok := guard.UserFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	body := map[string]any{
		"username":  user.Username(),
		"name":      user.Name(),
		"mail":      user.Mail(),
		"roles":     user.Roles(),
		"anonymous": user.Anonymous(),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.From(r.Context()).Warn("writing whoami response", logger.Err(err))
	}
}
