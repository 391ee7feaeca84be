package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/tistre/simple-oauth-login/internal/cache"
	cachememory "github.com/tistre/simple-oauth-login/internal/cache/memory"
	cacheredis "github.com/tistre/simple-oauth-login/internal/cache/redis"
	"github.com/tistre/simple-oauth-login/internal/config"
	httpserver "github.com/tistre/simple-oauth-login/internal/http"
	loginctrl "github.com/tistre/simple-oauth-login/internal/http/controllers/login"
	profilectrl "github.com/tistre/simple-oauth-login/internal/http/controllers/profile"
	"github.com/tistre/simple-oauth-login/internal/http/guard"
	loginsvc "github.com/tistre/simple-oauth-login/internal/http/services/login"
	"github.com/tistre/simple-oauth-login/internal/oauth/factory"
	"github.com/tistre/simple-oauth-login/internal/observability/logger"
	"github.com/tistre/simple-oauth-login/internal/session"
)

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err == nil {
			log.Printf("dotenv: cargado .env")
		}
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		if fileExists("configs/config.yaml") {
			cfgPath = "configs/config.yaml"
		} else {
			cfgPath = "configs/config.example.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Logging.Level,
		ServiceName: "login-svc",
	})
	defer func() { _ = logger.Sync() }()

	sessionTTL, err := cfg.SessionTTL()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Cache backend para sesiones
	var store cache.Cache
	switch cfg.Cache.Kind {
	case "redis":
		store = cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
	case "memory":
		ttl, err := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
		if err != nil {
			log.Fatalf("cache memory ttl: %v", err)
		}
		store = cachememory.New(ttl)
	default:
		log.Fatalf("cache: kind desconocido %q", cfg.Cache.Kind)
	}

	settings := cfg.Settings()

	registry, err := factory.BuildRegistry(settings)
	if err != nil {
		log.Fatalf("oauth providers: %v", err)
	}

	sessions := session.NewStore(store, session.Options{
		CookieName: cfg.Session.CookieName,
		Domain:     cfg.Session.Domain,
		SameSite:   cfg.Session.SameSite,
		Secure:     cfg.Session.Secure,
		TTL:        sessionTTL,
	})

	flow := loginsvc.NewService(loginsvc.Deps{
		Settings: settings,
		Registry: registry,
	})

	metricsHandler, err := httpserver.RegisterMetrics(nil)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	handler := httpserver.NewRouter(httpserver.RouterDeps{
		Login:         loginctrl.NewController(flow, sessions),
		Profile:       profilectrl.NewController(),
		Authenticator: guard.NewSessionAuthenticator(sessions, settings, "/login"),
		Users:         guard.NewSessionUserProvider(settings),
		Metrics:       metricsHandler,
	})

	logger.L().Info("login-svc up",
		logger.String("addr", cfg.Server.Addr),
		logger.Int("providers", registry.Len()),
		logger.String("cache", cfg.Cache.Kind),
	)

	srv := httpserver.NewServer(cfg.Server.Addr, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("http: %v", err)
	}
	logger.L().Info("login-svc stopped")
}
