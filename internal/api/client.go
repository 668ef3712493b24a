package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "ecosistema-session/1.0"

	csrfHeader = "X-CSRF-Token"
)

// TokenSource supplies the bearer token attached to outgoing requests.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is invoked when an authenticated request comes back
// with 401. It returns true when a fresh token is available and the request
// should be replayed.
type UnauthorizedHandler func(ctx context.Context) bool

type ClientOpts struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// ClientID identifies this installation to the backend (X-Client-ID).
	ClientID string
}

// Client is the HTTP adapter every component uses to talk to the backend.
type Client struct {
	httpClient *resty.Client
	baseURL    string

	mu             sync.RWMutex
	tokens         TokenSource
	csrfToken      string
	onUnauthorized UnauthorizedHandler
}

func NewClient(opts ClientOpts) *Client {
	c := &Client{baseURL: strings.TrimRight(opts.BaseURL, "/")}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": userAgent,
	}
	if opts.ClientID != "" {
		headers["X-Client-ID"] = opts.ClientID
	}

	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetHeaders(headers).
		OnBeforeRequest(c.decorateRequest).
		OnAfterResponse(c.captureCSRF)

	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource registers where bearer tokens come from.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthorized registers the handler run on 401 responses.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = h
}

// SetCSRFToken sets the token sent in the X-CSRF-Token header.
func (c *Client) SetCSRFToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csrfToken = token
}

// CSRFToken returns the last CSRF token seen or set.
func (c *Client) CSRFToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}

func (c *Client) decorateRequest(_ *resty.Client, r *resty.Request) error {
	c.mu.RLock()
	tokens, csrf := c.tokens, c.csrfToken
	c.mu.RUnlock()

	if tokens != nil {
		if token := tokens.Token(); token != "" {
			r.SetAuthToken(token)
		}
	}
	if csrf != "" && r.Method != http.MethodGet {
		r.SetHeader(csrfHeader, csrf)
	}
	r.SetHeader("X-Request-ID", uuid.NewString())
	return nil
}

func (c *Client) captureCSRF(_ *resty.Client, res *resty.Response) error {
	if token := res.Header().Get(csrfHeader); token != "" {
		c.SetCSRFToken(token)
	}
	return nil
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.NewRequest().SetContext(ctx)
	if result != nil {
		request.SetResult(result)
	}
	return request
}

func (c *Client) send(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	request := c.req(ctx, result)
	if body != nil {
		request.SetBody(body)
	}
	return request.Execute(method, path)
}

// do sends an authenticated request. A 401 is handed to the unauthorized
// handler once; if it reports a fresh token the request is replayed once.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	res, err := c.send(ctx, method, path, body, result)
	if err == nil && res.StatusCode() == http.StatusUnauthorized {
		c.mu.RLock()
		handler := c.onUnauthorized
		c.mu.RUnlock()

		if handler != nil && handler(ctx) {
			log.Debug().Str("method", method).Str("path", path).Msg("replaying request with refreshed token")
			res, err = c.send(ctx, method, path, body, result)
		}
	}
	_, err = handleError(res, err)
	return err
}

// Get performs an authenticated GET and decodes the response into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Error is a failed response (>399 status code).
type Error struct {
	Method     string
	URL        string
	StatusCode int
	// Message is the error text the server put in its payload, if any.
	Message string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("request failed: %s %s (status: %d)", e.Method, e.URL, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ServerMessage returns the server-provided message carried by err, or "".
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// handleError is a generic error handler for failing response (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, &Error{
			Method:     res.Request.Method,
			URL:        res.Request.URL,
			StatusCode: res.StatusCode(),
			Message:    errorMessage(res.Body()),
		}
	}
	return res, nil
}

// errorMessage pulls a human readable message out of an error payload.
func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, field := range []string{"message", "error", "detail"} {
		if s, ok := payload[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
