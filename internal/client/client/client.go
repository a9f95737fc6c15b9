package client

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

	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RefreshPath is the token refresh endpoint, relative to the base URL.
const RefreshPath = "/auth/refresh/"

// Requests to these endpoints never trigger a refresh: a 401 there means
// bad credentials, not an expired token.
var authEndpoints = []string{"/auth/login/", "/auth/register/"}

// TokenStore is where the facade reads and updates tokens. The session
// cache implements it.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	RefreshToken(ctx context.Context) string
	SetAccessToken(ctx context.Context, token string)
	Clear(ctx context.Context)
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRateLimit caps outbound requests at rps per second with the given
// burst. Callers block until a slot frees up. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// HTTPClient is the single entry point for backend calls. It attaches the
// bearer token, and on a 401 from a non-auth endpoint refreshes the access
// token once and replays the request once.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	log     logging.Logger
	limiter *rate.Limiter
	metrics *Metrics

	refreshMu sync.Mutex
}

func New(baseURL string, tokens TokenStore, log logging.Logger, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		log:     log.With("component", "http"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type response struct {
	status int
	body   []byte
}

func isAuthEndpoint(path string) bool {
	for _, p := range authEndpoints {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Do sends a request and decodes a 2xx JSON body into out (which may be
// nil). body, when not nil, is sent as JSON.
//
// Errors are *NetworkError when no response arrived, *APIError for non-2xx
// responses, and ErrAuthExpired when a 401 could not be recovered.
func (c *HTTPClient) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	token := c.tokens.AccessToken(ctx)

	resp, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && !isAuthEndpoint(path) {
		fresh, err := c.refresh(ctx, token)
		if err != nil {
			c.tokens.Clear(ctx)
			c.log.Warn(ctx, "token refresh failed, session cleared", "err", err)
			return fmt.Errorf("%w: %w", ErrAuthExpired, err)
		}

		// Replay once. A second 401 is returned as is.
		resp, err = c.send(ctx, method, path, query, payload, fresh)
		if err != nil {
			return err
		}
	}

	if resp.status < 200 || resp.status > 299 {
		return newAPIError(method, path, resp.status, resp.body)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *HTTPClient) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// refresh obtains a new access token. stale is the token the failed request
// carried; if another caller has refreshed in the meantime its token is
// reused instead of refreshing again.
func (c *HTTPClient) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.tokens.AccessToken(ctx); current != "" && current != stale {
		return current, nil
	}

	refreshToken := c.tokens.RefreshToken(ctx)
	if refreshToken == "" {
		c.metrics.observeRefresh(false)
		return "", common.ErrNotLoggedIn
	}

	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, http.MethodPost, RefreshPath, nil, payload, "")
	if err != nil {
		c.metrics.observeRefresh(false)
		return "", err
	}
	if resp.status < 200 || resp.status > 299 {
		c.metrics.observeRefresh(false)
		return "", newAPIError(http.MethodPost, RefreshPath, resp.status, resp.body)
	}

	var data struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(resp.body, &data); err != nil || data.Access == "" {
		c.metrics.observeRefresh(false)
		return "", fmt.Errorf("%w: refresh response has no access token", common.ErrInvalidToken)
	}

	c.tokens.SetAccessToken(ctx, data.Access)
	c.metrics.observeRefresh(true)
	c.log.Debug(ctx, "access token refreshed")
	return data.Access, nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.observeRequest(method, 0, time.Since(start))
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	elapsed := time.Since(start)
	c.metrics.observeRequest(method, res.StatusCode, elapsed)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug(ctx, "request",
		"method", method,
		"path", path,
		"request_id", requestID,
		"status", res.StatusCode,
		"duration", elapsed,
	)

	return &response{status: res.StatusCode, body: data}, nil
}

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNoResponse)
}
