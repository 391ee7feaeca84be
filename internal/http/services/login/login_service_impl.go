package login

import (
	"context"
	"fmt"

	"github.com/tistre/simple-oauth-login/internal/auth"
	"github.com/tistre/simple-oauth-login/internal/oauth"
	"github.com/tistre/simple-oauth-login/internal/observability/logger"
)

// FakeProviderName marks sessions not produced by a real identity provider
// (fake login and the bearer API-key fallback).
const FakeProviderName = "fake"

// Deps contains the login service dependencies.
type Deps struct {
	Settings *auth.Settings
	Registry *oauth.Registry
}

type loginService struct {
	settings *auth.Settings
	registry *oauth.Registry
}

// NewService creates the login flow service.
func NewService(d Deps) Service {
	return &loginService{settings: d.Settings, registry: d.Registry}
}

func (s *loginService) Entry() (string, bool) {
	first, ok := s.registry.First()
	if !ok {
		return "", false
	}
	return first.Name(), true
}

func (s *loginService) Known(service string) bool {
	_, ok := s.registry.Get(service)
	return ok
}

func (s *loginService) FakeLogin(ctx context.Context) (*auth.OAuthInfo, error) {
	fake := s.settings.FakeOAuth()
	if !fake.Enabled {
		return nil, ErrFakeDisabled
	}

	info := &auth.OAuthInfo{
		Authenticated: true,
		Provider:      FakeProviderName,
	}
	if det, ok := s.settings.DetailsByUsername(fake.Mail); ok {
		info.Mail = fake.Mail
		info.Name = det.Name
	}

	logger.From(ctx).Debug("fake login",
		logger.Layer("service"), logger.Component("login.fake"),
		logger.Mail(info.Mail),
	)
	return info, nil
}

func (s *loginService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	svc, ok := s.registry.Get(req.Service)
	if !ok {
		return nil, ErrUnknownService
	}

	state, err := oauth.NewState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthURLFailed, err)
	}

	authURL, err := svc.AuthURL(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthURLFailed, err)
	}

	// The state is validated on callback; redirect_after_login is consumed
	// there as well. Both travel only through the session.
	req.Info.State = state
	req.Info.RedirectAfterLogin = req.RedirectAfterLogin

	logger.From(ctx).Debug("redirecting to provider",
		logger.Layer("service"), logger.Component("login.start"),
		logger.Service(req.Service),
	)
	return &StartResult{AuthorizationURL: authURL}, nil
}

func (s *loginService) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("login.callback"))

	svc, ok := s.registry.Get(req.Service)
	if !ok {
		return nil, ErrUnknownService
	}

	// The state is the only integrity control of the callback step. It must
	// be non-empty and match the session copy exactly; a mismatch wipes the
	// stored value so the whole flow restarts from /login.
	if req.State == "" || req.State != req.Info.State {
		req.Info.State = ""
		return nil, ErrStateMismatch
	}

	token, err := svc.Exchange(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	details, err := svc.UserDetails(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	groups, err := svc.UserGroups(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	redirect := req.Info.RedirectAfterLogin
	if redirect == "" {
		redirect = "/"
	}

	info := req.Info
	info.Authenticated = true
	info.Provider = svc.Name()
	info.AccessToken = token.AccessToken
	info.Mail = details.Mail
	info.Name = details.Name
	info.Image = details.Image
	info.URL = details.URL
	info.Groups = groups

	log.Info("login completed",
		logger.Service(req.Service),
		logger.Mail(details.Mail),
	)
	return &CallbackResult{RedirectURL: redirect}, nil
}
