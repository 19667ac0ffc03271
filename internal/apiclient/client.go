// Package apiclient talks to the remote POS REST API and normalizes every
// response into an Envelope. Nothing in this package returns a transport
// error to callers; failures are reported inside the envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tillwork/posadmin/internal/config"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/observability"
)

// DefaultRefreshPath is the token refresh endpoint relative to the base URL.
const DefaultRefreshPath = "/auth/refresh"

// CredentialStore persists the remote tokens for one console session.
type CredentialStore interface {
	Load(ctx context.Context) (domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	Clear(ctx context.Context) error
}

// Request describes one remote call.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

// Client issues requests against the configured base URL.
type Client struct {
	baseURL     string
	tenantSlug  string
	tenantID    string
	http        *http.Client
	store       CredentialStore
	refreshPath string
	logger      *zap.Logger
	metrics     *observability.Metrics
	refreshMu   *sync.Mutex
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = observability.OrNop(logger) }
}

// WithMetrics records each call.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRefreshPath overrides DefaultRefreshPath.
func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

// New builds an anonymous client. Use WithStore to bind session credentials.
func New(cfg config.RemoteConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tenantSlug:  cfg.TenantSlug,
		tenantID:    cfg.TenantID,
		http:        &http.Client{Timeout: cfg.Timeout()},
		refreshPath: DefaultRefreshPath,
		logger:      zap.NewNop(),
		refreshMu:   &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithStore returns a copy of c that authenticates with the given store.
func (c *Client) WithStore(store CredentialStore) *Client {
	clone := *c
	clone.store = store
	clone.refreshMu = &sync.Mutex{}
	return &clone
}

// Store returns the bound credential store, if any.
func (c *Client) Store() CredentialStore {
	return c.store
}

// Do performs the request and normalizes the response. A 401 triggers one
// token refresh and one retry; a second 401 yields AuthExpired.
func (c *Client) Do(ctx context.Context, req Request) Envelope[json.RawMessage] {
	creds := c.loadCredentials(ctx)
	env := c.send(ctx, req, creds)
	if env.Status != http.StatusUnauthorized || c.store == nil {
		return env
	}

	if err := c.refresh(ctx, creds.AccessToken); err != nil {
		c.logger.Warn("token refresh failed", zap.String("path", req.Path), zap.Error(err))
		c.expire(ctx)
		return failure[json.RawMessage](FailureAuthExpired, http.StatusUnauthorized, "session expired, please sign in again")
	}

	env = c.send(ctx, req, c.loadCredentials(ctx))
	if env.Status == http.StatusUnauthorized {
		c.expire(ctx)
		return failure[json.RawMessage](FailureAuthExpired, http.StatusUnauthorized, "session expired, please sign in again")
	}
	return env
}

// Call performs req and decodes the envelope data into T.
func Call[T any](ctx context.Context, c *Client, req Request) Envelope[T] {
	raw := c.Do(ctx, req)
	out := Envelope[T]{Success: raw.Success, Message: raw.Message, Status: raw.Status, Kind: raw.Kind}
	if !raw.Success || len(raw.Data) == 0 {
		return out
	}
	if err := json.Unmarshal(raw.Data, &out.Data); err != nil {
		return failure[T](FailureAPI, raw.Status, "unexpected response shape: "+err.Error())
	}
	return out
}

// Get is shorthand for a GET Call.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) Envelope[T] {
	return Call[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post is shorthand for a POST Call.
func Post[T any](ctx context.Context, c *Client, path string, body any) Envelope[T] {
	return Call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put is shorthand for a PUT Call.
func Put[T any](ctx context.Context, c *Client, path string, body any) Envelope[T] {
	return Call[T](ctx, c, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete is shorthand for a DELETE Call.
func Delete[T any](ctx context.Context, c *Client, path string) Envelope[T] {
	return Call[T](ctx, c, Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) send(ctx context.Context, req Request, creds domain.Credentials) (env Envelope[json.RawMessage]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			env = failure[json.RawMessage](FailureNetwork, 0, fmt.Sprintf("request panicked: %v", r))
		}
		outcome := "ok"
		if !env.Success {
			outcome = string(env.Kind)
		}
		c.metrics.RecordRemoteCall(req.Method, outcome, time.Since(start))
		c.logger.Debug("remote call",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", env.Status),
			zap.Bool("success", env.Success),
			zap.Duration("duration", time.Since(start)))
	}()

	httpReq, err := c.buildRequest(ctx, req, creds)
	if err != nil {
		return failure[json.RawMessage](FailureNetwork, 0, err.Error())
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.Canceled) {
			msg = "request canceled"
		} else if errors.Is(err, context.DeadlineExceeded) {
			msg = "request timed out"
		}
		return failure[json.RawMessage](FailureNetwork, 0, msg)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure[json.RawMessage](FailureNetwork, resp.StatusCode, "reading response: "+err.Error())
	}
	return normalize(resp.StatusCode, body)
}

func (c *Client) buildRequest(ctx context.Context, req Request, creds domain.Credentials) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	slug, id := c.tenantSlug, c.tenantID
	if creds.TenantSlug != "" || creds.TenantID != "" {
		slug, id = creds.TenantSlug, creds.TenantID
	}
	if slug != "" {
		httpReq.Header.Set("x-tenant-slug", slug)
	} else if id != "" {
		httpReq.Header.Set("x-tenant-id", id)
	}
	if creds.AccessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	return httpReq, nil
}

// Refresh exchanges the stored refresh token for a new token pair. A failed
// refresh clears the stored credentials.
func (c *Client) Refresh(ctx context.Context) error {
	if c.store == nil {
		return &Error{Kind: FailureAuthExpired, Status: http.StatusUnauthorized, Message: "no session"}
	}
	creds := c.loadCredentials(ctx)
	if err := c.refresh(ctx, creds.AccessToken); err != nil {
		c.expire(ctx)
		return &Error{Kind: FailureAuthExpired, Status: http.StatusUnauthorized, Message: "session expired, please sign in again"}
	}
	return nil
}

func (c *Client) loadCredentials(ctx context.Context) domain.Credentials {
	if c.store == nil {
		return domain.Credentials{}
	}
	creds, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("loading credentials", zap.Error(err))
		return domain.Credentials{}
	}
	return creds
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refresh exchanges the refresh token for a new access token. Concurrent
// callers that saw the same stale token share a single refresh.
func (c *Client) refresh(ctx context.Context, staleToken string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	creds := c.loadCredentials(ctx)
	if creds.AccessToken != "" && creds.AccessToken != staleToken {
		return nil
	}
	if creds.RefreshToken == "" {
		return errors.New("no refresh token")
	}

	env := c.send(ctx, Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Body:   map[string]string{"refreshToken": creds.RefreshToken},
	}, domain.Credentials{TenantSlug: creds.TenantSlug, TenantID: creds.TenantID})
	if !env.Success {
		return env.Err()
	}

	var tokens refreshResponse
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("refresh response missing access token")
	}
	creds.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		creds.RefreshToken = tokens.RefreshToken
	}
	creds.UpdatedAt = time.Now()
	return c.store.Save(ctx, creds)
}

func (c *Client) expire(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clearing expired credentials", zap.Error(err))
	}
}
