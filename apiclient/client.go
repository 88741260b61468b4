// Package apiclient is the authenticated request pipeline in front of the event backend.
// It attaches the stored access token to every call and recovers from expired tokens
// with a single-flight refresh followed by one retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/jrsteele09/go-event-portal/token"
	"github.com/jrsteele09/go-event-portal/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// RefreshPath is the backend endpoint exchanging a refresh token for a new access token
const RefreshPath = "/api/auth/refresh"

// RequestIDHeader carries a per-call id, shared by the original attempt and its retry
const RequestIDHeader = "X-Request-ID"

const defaultTimeout = 30 * time.Second

var (
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrSessionReset   = errors.New("session reset during token refresh")
)

// Client performs backend calls on behalf of the session
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      token.Repo
	coordinator *refresh.Coordinator
	metrics     *Metrics
	logger      zerolog.Logger

	navLock   sync.RWMutex
	navigator Navigator

	epochLock sync.Mutex
	epoch     uint64 // bumped by ResetSession; a refresh started in an older epoch is discarded
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.SetNavigator(n)
	}
}

// WithCoordinator shares a refresh coordinator between clients using the same token store
func WithCoordinator(rc *refresh.Coordinator) Option {
	return func(c *Client) {
		if rc != nil {
			c.coordinator = rc
		}
	}
}

// New creates a pipeline against baseURL (e.g. http://localhost:5001) backed by tokens
func New(baseURL string, tokens token.Repo, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if tokens == nil {
		return nil, errors.New("[apiclient.New] token repo is required")
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		tokens:      tokens,
		coordinator: refresh.NewCoordinator(),
		logger:      zerolog.Nop(),
		navigator:   noopNavigator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetNavigator replaces the redirect target. A nil navigator discards redirects.
func (c *Client) SetNavigator(n Navigator) {
	if n == nil {
		n = noopNavigator{}
	}
	c.navLock.Lock()
	defer c.navLock.Unlock()
	c.navigator = n
}

// Tokens is the store the pipeline reads and writes
func (c *Client) Tokens() token.Repo {
	return c.tokens
}

// Do sends req. Non-2xx responses are returned together with an *errors.APIError.
// An expired access token is refreshed once and the call retried; any other 401
// clears the stored tokens and redirects to the login page.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}
	requestID := uuid.New().String()

	sent, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, req, body, sent, requestID)
	if err != nil {
		c.metrics.request(req.Method, OutcomeNetwork)
		return nil, err
	}
	if resp.ok() {
		c.metrics.request(req.Method, OutcomeOK)
		return resp, nil
	}

	apiErr := resp.apiError()
	switch {
	case errors.Is(apiErr, apperrors.ErrTokenExpired):
		return c.recoverExpired(ctx, req, body, sent, requestID)
	case errors.Is(apiErr, apperrors.ErrUnauthorized):
		c.metrics.request(req.Method, OutcomeAPIError)
		c.endSession(ctx, "unauthorized response")
		return resp, apiErr
	default:
		c.metrics.request(req.Method, OutcomeAPIError)
		return resp, apiErr
	}
}

// recoverExpired runs the refresh protocol for a call rejected with an expired token
func (c *Client) recoverExpired(ctx context.Context, req *Request, body []byte, sent, requestID string) (*Response, error) {
	current, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var newToken string
	if leader, wait := c.coordinator.Begin(sent, current); leader {
		newToken, err = c.refreshAsLeader(ctx, sent)
	} else {
		c.logger.Debug().Str("request_id", requestID).Str("path", req.Path).Msg("waiting for token refresh")
		res := refresh.Await(ctx, wait)
		newToken, err = res.AccessToken, res.Err
	}
	if err != nil {
		c.metrics.request(req.Method, OutcomeAPIError)
		return nil, err
	}
	return c.retry(ctx, req, body, newToken, requestID)
}

// retry sends the call once more. Its result is final: no refresh, no redirect.
func (c *Client) retry(ctx context.Context, req *Request, body []byte, accessToken, requestID string) (*Response, error) {
	resp, err := c.send(ctx, req, body, accessToken, requestID)
	if err != nil {
		c.metrics.request(req.Method, OutcomeNetwork)
		return nil, err
	}
	c.metrics.request(req.Method, OutcomeRetried)
	if !resp.ok() {
		return resp, resp.apiError()
	}
	return resp, nil
}

// RefreshAccessToken obtains a new access token through the same single-flight
// protocol used for expired responses. Failure ends the session.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	sent, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	leader, wait := c.coordinator.Begin(sent, sent)
	if leader {
		return c.refreshAsLeader(ctx, sent)
	}
	res := refresh.Await(ctx, wait)
	return res.AccessToken, res.Err
}

// refreshAsLeader performs the one refresh call and settles every queued caller.
// It runs detached from the caller's cancellation so that the queue always drains.
func (c *Client) refreshAsLeader(ctx context.Context, sent string) (string, error) {
	ctx = context.WithoutCancel(ctx)
	epoch := c.Epoch()

	refreshToken, found, err := c.tokens.Get(ctx, token.RefreshTokenKey)
	if err == nil && (!found || refreshToken == "") {
		err = ErrNoRefreshToken
	}
	if err != nil {
		failure := apperrors.RefreshFailed(err)
		c.metrics.refresh(RefreshNoToken)
		c.coordinator.Finish(sent, refresh.Result{Err: failure})
		c.endSession(ctx, "no refresh token")
		return "", failure
	}

	accessToken, err := c.callRefresh(ctx, refreshToken)
	if err == nil {
		err = c.storeIfCurrent(ctx, epoch, accessToken)
	}
	if errors.Is(err, ErrSessionReset) {
		failure := apperrors.RefreshFailed(err)
		c.metrics.refresh(RefreshFailed)
		c.coordinator.Finish(sent, refresh.Result{Err: failure})
		c.logger.Info().Msg("discarding refreshed token, session was reset")
		return "", failure
	}
	if err != nil {
		failure := apperrors.RefreshFailed(err)
		c.metrics.refresh(RefreshFailed)
		c.coordinator.Finish(sent, refresh.Result{Err: failure})
		c.endSession(ctx, "token refresh failed")
		return "", failure
	}

	c.metrics.refresh(RefreshSucceeded)
	c.coordinator.Finish(sent, refresh.Result{AccessToken: accessToken})
	c.logger.Info().Msg("access token refreshed")
	return accessToken, nil
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// callRefresh presents the refresh token as the bearer credential
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.send(ctx, &Request{Method: http.MethodPost, Path: RefreshPath}, nil, refreshToken, uuid.New().String())
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", resp.apiError()
	}
	var out refreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response carried no access token")
	}
	return out.AccessToken, nil
}

// ResetSession marks the start of a new session. A refresh already in flight will
// not store its token; its callers fail with ErrSessionReset. Call before clearing
// or replacing the stored tokens.
func (c *Client) ResetSession() {
	c.epochLock.Lock()
	defer c.epochLock.Unlock()
	c.epoch++
}

// Epoch identifies the current session
func (c *Client) Epoch() uint64 {
	c.epochLock.Lock()
	defer c.epochLock.Unlock()
	return c.epoch
}

// storeIfCurrent writes the access token only while epoch is still current
func (c *Client) storeIfCurrent(ctx context.Context, epoch uint64, accessToken string) error {
	c.epochLock.Lock()
	defer c.epochLock.Unlock()
	if c.epoch != epoch {
		return ErrSessionReset
	}
	return c.tokens.Set(ctx, token.AccessTokenKey, accessToken)
}

// endSession clears both tokens and asks the navigator for the login page
func (c *Client) endSession(ctx context.Context, reason string) {
	if err := token.Clear(ctx, c.tokens); err != nil {
		c.logger.Error().Err(err).Msg("clearing tokens")
	}
	c.logger.Warn().Str("reason", reason).Msg("session ended, redirecting to login")
	c.metrics.redirect()

	c.navLock.RLock()
	nav := c.navigator
	c.navLock.RUnlock()
	nav.Redirect(LoginPath)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	v, _, err := c.tokens.Get(ctx, token.AccessTokenKey)
	if err != nil {
		return "", errors.Wrap(err, "[Client.accessToken]")
	}
	return v, nil
}

func (c *Client) send(ctx context.Context, req *Request, body []byte, accessToken, requestID string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] build request")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, requestID)
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: token.BearerType}).SetAuthHeader(httpReq)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("path", req.Path).Msg("backend call failed")
		return nil, apperrors.Network(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	return &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      data,
		RequestID: requestID,
	}, nil
}

func encodeBody(req *Request) ([]byte, error) {
	if req == nil {
		return nil, errors.New("[Client.Do] request is required")
	}
	if req.Body == nil {
		return nil, nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] encode body")
	}
	return data, nil
}
