// Package auth owns the client session: login, logout, registration, token refresh and
// the current user, initialised from the token store at startup.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-event-portal/apiclient"
	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/sessions"
	"github.com/jrsteele09/go-event-portal/token"
	"github.com/jrsteele09/go-event-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Backend auth endpoints
const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
	MePath       = "/api/auth/me"
)

// Pipeline is the request pipeline the controller drives
type Pipeline interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	RefreshAccessToken(ctx context.Context) (string, error)
	SetNavigator(n apiclient.Navigator)
	ResetSession()
	Tokens() token.Repo
}

var (
	_ Pipeline        = (*apiclient.Client)(nil)
	_ sessions.Reader = (*Controller)(nil)
)

// Controller is the single owner of the Session. Readers get snapshots.
type Controller struct {
	api       Pipeline
	tokens    token.Repo
	navigator apiclient.Navigator
	logger    zerolog.Logger

	lock        sync.RWMutex
	session     sessions.Session
	generation  uint64 // bumped by Initialize, Login and Logout; stale results are dropped
	subscribers map[int]func(sessions.Session)
	nextSubID   int
}

type ControllerOption func(*Controller)

// WithNavigator forwards the pipeline's login redirects to n after the session is reset
func WithNavigator(n apiclient.Navigator) ControllerOption {
	return func(c *Controller) {
		c.navigator = n
	}
}

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController takes over the pipeline's navigator so that a session ended by the
// pipeline is reflected in the controller's state.
func NewController(api Pipeline, options ...ControllerOption) (*Controller, error) {
	if api == nil {
		return nil, errors.New("[NewController] pipeline is required")
	}
	if api.Tokens() == nil {
		return nil, errors.New("[NewController] pipeline has no token repo")
	}
	c := &Controller{
		api:         api,
		tokens:      api.Tokens(),
		logger:      zerolog.Nop(),
		session:     sessions.New(),
		subscribers: make(map[int]func(sessions.Session)),
	}
	for _, opt := range options {
		opt(c)
	}
	api.SetNavigator(apiclient.NavigatorFunc(c.sessionEnded))
	return c, nil
}

// Session returns a snapshot of the current session
func (c *Controller) Session() sessions.Session {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.session
}

// Subscribe registers fn for every session change
func (c *Controller) Subscribe(fn func(sessions.Session)) (cancel func()) {
	c.lock.Lock()
	defer c.lock.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.lock.Lock()
			defer c.lock.Unlock()
			delete(c.subscribers, id)
		})
	}
}

// Initialize restores the session from the token store. A stored access token is
// checked by fetching the current user; any failure clears the tokens. It always ends
// with Loading false unless superseded by a later Login or Logout.
func (c *Controller) Initialize(ctx context.Context) error {
	gen := c.update(true, func(s *sessions.Session) {
		*s = sessions.New().Initialized()
	})

	tok, err := token.Load(ctx, c.tokens)
	if err != nil {
		c.logger.Warn().Err(err).Msg("reading stored tokens")
		c.clearTokens(ctx, gen)
	}
	if err != nil || tok == nil || tok.AccessToken == "" {
		c.updateIf(gen, func(s *sessions.Session) {
			s.Loading = false
			if err != nil {
				s.LastError = err.Error()
			}
		})
		return errors.Wrap(err, "[Controller.Initialize]")
	}

	c.updateIf(gen, func(s *sessions.Session) {
		s.AccessToken, s.RefreshToken = tok.AccessToken, tok.RefreshToken
	})

	var u users.User
	if err := c.api.Get(ctx, MePath, &u); err != nil {
		c.logger.Warn().Err(err).Msg("stored session rejected")
		c.clearTokens(ctx, gen)
		c.updateIf(gen, func(s *sessions.Session) {
			*s = sessions.Session{LastError: SessionExpiredMessage}.Initialized()
		})
		return errors.Wrap(err, "[Controller.Initialize] fetch current user")
	}

	current := c.storedTokens(ctx)
	c.updateIf(gen, func(s *sessions.Session) {
		s.AccessToken, s.RefreshToken = current.AccessToken, current.RefreshToken
		s.CurrentUser = &u
		s.Loading = false
		s.LastError = ""
	})
	return nil
}

// Login authenticates, stores both tokens and the inline user
func (c *Controller) Login(ctx context.Context, email, password string) (*users.User, error) {
	params := LoginParameters{Email: email, Password: password}
	if err := params.Validate(); err != nil {
		c.setLastError(err)
		return nil, fmt.Errorf("%w: %w", LoginFailedErr, err)
	}
	gen := c.update(true, func(s *sessions.Session) {
		s.Loading = false
		s.LastError = ""
	})

	var resp LoginResponse
	if err := c.api.Post(ctx, LoginPath, params, &resp); err != nil {
		c.setLastError(err)
		return nil, fmt.Errorf("%w: %w", LoginFailedErr, err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		c.setLastError(MissingTokensErr)
		return nil, fmt.Errorf("%w: %w", LoginFailedErr, MissingTokensErr)
	}
	if c.Generation() != gen {
		return nil, fmt.Errorf("%w: %w", LoginFailedErr, SupersededErr)
	}
	c.api.ResetSession()
	if err := token.Save(ctx, c.tokens, resp.Token()); err != nil {
		c.setLastError(err)
		return nil, fmt.Errorf("%w: %w", LoginFailedErr, err)
	}

	user := resp.User
	if user == nil {
		user = &users.User{}
		if err := c.api.Get(ctx, MePath, user); err != nil {
			c.clearTokens(ctx, gen)
			c.setLastError(err)
			return nil, fmt.Errorf("%w: %w", LoginFailedErr, err)
		}
	}

	applied := c.updateIf(gen, func(s *sessions.Session) {
		s.AccessToken, s.RefreshToken = resp.AccessToken, resp.RefreshToken
		s.CurrentUser = user
		s.Loading = false
		s.LastError = ""
	})
	if !applied {
		return nil, fmt.Errorf("%w: %w", LoginFailedErr, SupersededErr)
	}
	c.logger.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("logged in")
	return user, nil
}

// Register creates an account. The session is left as it is.
func (c *Controller) Register(ctx context.Context, username, email, password string) (*RegisterResponse, error) {
	params := RegisterParameters{Username: username, Email: email, Password: password}
	if err := params.Validate(); err != nil {
		c.setLastError(err)
		return nil, fmt.Errorf("%w: %w", RegistrationFailedErr, err)
	}
	var resp RegisterResponse
	if err := c.api.Post(ctx, RegisterPath, params, &resp); err != nil {
		c.setLastError(err)
		return nil, fmt.Errorf("%w: %w", RegistrationFailedErr, err)
	}
	return &resp, nil
}

// Logout clears both tokens and the current user. It cannot fail and is idempotent.
func (c *Controller) Logout() {
	c.api.ResetSession()
	if err := token.Clear(context.Background(), c.tokens); err != nil {
		c.logger.Error().Err(err).Msg("clearing tokens on logout")
	}
	c.update(true, func(s *sessions.Session) {
		*s = sessions.Session{}.Initialized()
	})
}

// Refresh obtains a new access token through the pipeline's single-flight refresh.
// On failure the session is logged out and the error returned.
func (c *Controller) Refresh(ctx context.Context) (string, error) {
	accessToken, err := c.api.RefreshAccessToken(ctx)
	if err != nil {
		c.Logout()
		return "", errors.Wrap(err, "[Controller.Refresh]")
	}
	c.update(false, func(s *sessions.Session) {
		s.AccessToken = accessToken
	})
	return accessToken, nil
}

// ReloadUser re-fetches the current user. Failure clears the session.
func (c *Controller) ReloadUser(ctx context.Context) error {
	gen := c.Generation()
	if tok, err := token.Load(ctx, c.tokens); err != nil || tok == nil || tok.AccessToken == "" {
		c.updateIf(gen, func(s *sessions.Session) { s.Loading = false })
		return errors.Wrap(err, "[Controller.ReloadUser]")
	}

	var u users.User
	if err := c.api.Get(ctx, MePath, &u); err != nil {
		if c.Generation() == gen {
			c.Logout()
		}
		return errors.Wrap(err, "[Controller.ReloadUser]")
	}
	current := c.storedTokens(ctx)
	c.updateIf(gen, func(s *sessions.Session) {
		s.AccessToken, s.RefreshToken = current.AccessToken, current.RefreshToken
		s.CurrentUser = &u
		s.Loading = false
	})
	return nil
}

// Generation identifies the latest Initialize, Login or Logout
func (c *Controller) Generation() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.generation
}

// sessionEnded is called by the pipeline after it cleared the tokens
func (c *Controller) sessionEnded(path string) {
	c.update(false, func(s *sessions.Session) {
		*s = sessions.Session{LastError: s.LastError}.Initialized()
	})
	if c.navigator != nil {
		c.navigator.Redirect(path)
	}
}

// clearTokens empties the store unless a later Initialize, Login or Logout owns it
func (c *Controller) clearTokens(ctx context.Context, gen uint64) {
	if c.Generation() != gen {
		return
	}
	if err := token.Clear(ctx, c.tokens); err != nil {
		c.logger.Error().Err(err).Msg("clearing tokens")
	}
}

func (c *Controller) setLastError(err error) {
	c.update(false, func(s *sessions.Session) {
		s.LastError = apperrors.Message(err)
	})
}

// storedTokens reads the pair back after a call; the pipeline may have refreshed the access token
func (c *Controller) storedTokens(ctx context.Context) oauth2.Token {
	tok, err := token.Load(ctx, c.tokens)
	if err != nil || tok == nil {
		return oauth2.Token{}
	}
	return *tok
}

// update applies fn and notifies subscribers. bump starts a new generation.
func (c *Controller) update(bump bool, fn func(*sessions.Session)) uint64 {
	c.lock.Lock()
	if bump {
		c.generation++
	}
	fn(&c.session)
	gen, snapshot, subs := c.generation, c.session, c.subscriberList()
	c.lock.Unlock()

	notify(subs, snapshot)
	return gen
}

// updateIf applies fn only while gen is still current
func (c *Controller) updateIf(gen uint64, fn func(*sessions.Session)) bool {
	c.lock.Lock()
	if c.generation != gen {
		c.lock.Unlock()
		return false
	}
	fn(&c.session)
	snapshot, subs := c.session, c.subscriberList()
	c.lock.Unlock()

	notify(subs, snapshot)
	return true
}

func (c *Controller) subscriberList() []func(sessions.Session) {
	subs := make([]func(sessions.Session), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(sessions.Session), s sessions.Session) {
	for _, fn := range subs {
		fn(s)
	}
}
