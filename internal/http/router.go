package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	loginctrl "github.com/tistre/simple-oauth-login/internal/http/controllers/login"
	profilectrl "github.com/tistre/simple-oauth-login/internal/http/controllers/profile"
	"github.com/tistre/simple-oauth-login/internal/http/guard"
	"github.com/tistre/simple-oauth-login/internal/http/middlewares"
)

// RouterDeps agrupa todo lo que el router necesita para armar las rutas.
type RouterDeps struct {
	Login   *loginctrl.Controller
	Profile *profilectrl.Controller

	// Authenticator + UserProvider para las rutas protegidas
	Authenticator guard.Authenticator
	Users         guard.UserProvider

	// Handler para /metrics (nil lo deshabilita)
	Metrics http.Handler
}

// NewRouter arma el router completo: rutas de login públicas, health,
// métricas y las páginas protegidas detrás del authenticator.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	// Login: el punto de entrada y el flujo por servicio son públicos.
	// /login/{service} acepta cualquier método; el controller decide
	// qué hacer con los que no son GET.
	r.Get("/login", deps.Login.Login)
	r.Get("/login/", deps.Login.Login)
	r.HandleFunc("/login/fake", deps.Login.FakeLogin)
	r.HandleFunc("/login/{service}", deps.Login.ServiceLogin)

	// Páginas protegidas
	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(deps.Authenticator, deps.Users))
		r.Get("/", deps.Profile.Index)
		r.Get("/whoami", deps.Profile.Whoami)
	})

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		WithMetrics,
	)
}
