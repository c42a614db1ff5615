package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/pim-console/pkg/auth"
	"github.com/angelmondragon/pim-console/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/metrics"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	maxResponseBytes int64 = 4 << 20
	refreshPath            = "/v1/token/refresh/"
	defaultTimeout         = 15 * time.Second
	defaultRefreshTimeout  = 10 * time.Second
)

// Termination reasons shown to the user after the gateway ends a session.
const (
	ReasonRefreshFailed = "Token inválido o expirado"
	ReasonForbidden     = "Usuario desactivado o sin permisos"
	ReasonRoleChanged   = "Cambio de rol detectado"
)

// CredentialStore holds the upstream tokens of console sessions.
type CredentialStore interface {
	Load(ctx context.Context, sessionID string) (session.Credentials, error)
	UpdateAccess(ctx context.Context, sessionID, access string) error
	Terminate(ctx context.Context, sessionID, reason string) error
}

// Requester issues authenticated upstream requests. Resource clients depend
// on this instead of the concrete gateway.
type Requester interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// Response is a fully read upstream response.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// Text returns the trimmed body, for error messages.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Body))
}

// Client talks to the upstream API on behalf of console sessions. It is safe
// for concurrent use; concurrent refreshes of one session share one call.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	store          CredentialStore
	limiter        *rate.Limiter
	metrics        *metrics.GatewayMetrics
	logg           *logger.Logger
	refreshes      singleflight.Group
	refreshTimeout time.Duration
	onTerminate    []func(sessionID, reason string)
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit paces upstream requests with a token bucket.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			if burst <= 0 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// WithRefreshTimeout bounds the detached token refresh exchange.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// WithTerminationHook registers fn to run after the gateway ends a session.
func WithTerminationHook(fn func(sessionID, reason string)) Option {
	return func(c *Client) {
		if fn != nil {
			c.onTerminate = append(c.onTerminate, fn)
		}
	}
}

// New builds a gateway client for the upstream API at baseURL.
func New(baseURL string, store CredentialStore, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("upstream base url is required")
	}
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	c := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		baseURL:        trimmed,
		store:          store,
		limiter:        rate.NewLimiter(rate.Inf, 1),
		logg:           logger.Nop(),
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// For binds the client to one console session.
func (c *Client) For(sessionID string) *Gateway {
	return &Gateway{client: c, sessionID: sessionID}
}

// Gateway is a Requester bound to one console session.
type Gateway struct {
	client    *Client
	sessionID string
}

func (g *Gateway) SessionID() string {
	return g.sessionID
}

// Do sends an authenticated request. A 401 triggers one credential refresh
// and one retry; a refused refresh or a 403 ends the session. Any other
// status is returned to the caller as is.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	c := g.client
	creds, err := c.store.Load(ctx, g.sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "console session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load console session")
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, creds.Access, payload)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		access, err := c.refresh(ctx, creds)
		if err != nil {
			return nil, err
		}
		resp, err = c.send(ctx, method, path, access, payload)
		if err != nil {
			return nil, err
		}
	}

	if resp.Status == http.StatusForbidden {
		c.terminate(ctx, g.sessionID, ReasonForbidden)
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, ReasonForbidden)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path, access string, payload []byte) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream rate limit wait")
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upstream response")
	}
	c.metrics.ObserveRequest(method, resp.StatusCode)

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	c.logg.Debug(logCtx, "upstream request")

	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// refresh exchanges the session's refresh token for a new access token and
// stores it. Concurrent callers for the same session share one exchange,
// which runs detached from any single caller so a dropped request does not
// abort it. Only a definitive refusal ends the session.
func (c *Client) refresh(ctx context.Context, creds session.Credentials) (string, error) {
	ch := c.refreshes.DoChan(creds.SessionID, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		access, reason, err := c.exchange(rctx, creds)
		if err != nil {
			c.metrics.ObserveRefresh(false)
			if reason == "" {
				return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh access token")
			}
			c.terminate(rctx, creds.SessionID, reason)
			return "", pkgerrors.Wrap(pkgerrors.CodeTerminated, err, reason).WithDetails(map[string]string{"reason": reason})
		}
		c.metrics.ObserveRefresh(true)
		if err := c.store.UpdateAccess(rctx, creds.SessionID, access); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refreshed access token")
		}
		c.logg.Info(c.logg.WithSessionID(rctx, creds.SessionID), "access token refreshed")
		return access, nil
	})

	select {
	case <-ctx.Done():
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "refresh access token")
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// exchange posts the refresh token. A non-empty reason marks a definitive
// refusal by the upstream; an empty reason means the exchange never got a
// verdict (transport, timeout, cancellation).
func (c *Client) exchange(ctx context.Context, creds session.Credentials) (string, string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": creds.Refresh})
	if err != nil {
		return "", "", err
	}
	resp, err := c.send(ctx, http.MethodPost, refreshPath, "", payload)
	if err != nil {
		return "", "", err
	}
	if !resp.OK() {
		return "", ReasonRefreshFailed, fmt.Errorf("refresh status %d", resp.Status)
	}
	var body struct {
		Access string `json:"access"`
	}
	if err := resp.Decode(&body); err != nil || strings.TrimSpace(body.Access) == "" {
		return "", ReasonRefreshFailed, fmt.Errorf("refresh response without access token")
	}
	if err := auth.CheckRole(body.Access, string(creds.User.Role)); err != nil {
		if errors.Is(err, auth.ErrRoleChanged) {
			return "", ReasonRoleChanged, err
		}
		return "", ReasonRefreshFailed, err
	}
	return body.Access, "", nil
}

// terminate ends the session even when ctx is already cancelled.
func (c *Client) terminate(ctx context.Context, sessionID, reason string) {
	detached := context.WithoutCancel(ctx)
	logCtx := c.logg.WithFields(c.logg.WithSessionID(detached, sessionID), map[string]any{"reason": reason})
	if err := c.store.Terminate(detached, sessionID, reason); err != nil {
		c.logg.Error(logCtx, "terminate console session", err)
	} else {
		c.logg.Warn(logCtx, "console session terminated")
	}
	c.metrics.IncTermination(reason)
	for _, fn := range c.onTerminate {
		fn(sessionID, reason)
	}
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upstream request body")
	}
	return payload, nil
}
