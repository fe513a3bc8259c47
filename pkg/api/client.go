// Package api implements the REST client for the deployment platform.
//
// The client is deliberately thin: token auth, team scoping, JSON error
// envelope decoding and cursor pagination. Streaming endpoints hand the
// raw response back to the caller (see pkg/stream).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stratus-cloud/stratus/pkg/api/status"
	"github.com/stratus-cloud/stratus/pkg/errors"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.stratus-cloud.dev"

// Client talks to the platform API on behalf of one authenticated user.
type Client struct {
	baseURL string
	token   string
	teamID  string
	hc      *http.Client
	l       *zap.Logger
}

// Option is a functor to define client settings
type Option func(*Client)

// WithBaseURL overrides the platform API endpoint
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithToken sets the bearer token used on every call
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTeam scopes all calls to a team (empty means personal scope)
func WithTeam(teamID string) Option {
	return func(c *Client) {
		c.teamID = teamID
	}
}

// WithHTTPClient injects the underlying http client (used by tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger injects a logger on this client
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// New builds a platform API client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 5 * time.Minute},
		l:       zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Error is the decoded platform API error envelope.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error message
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("platform API error (%d): %s", e.StatusCode, e.Message)
}

// Retryable tells whether a fresh attempt may succeed (server-side failures only).
func (e *Error) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable classifies any error: API errors below 500 are permanent,
// everything else (transport, decode, 5xx) is worth a fresh attempt.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return err != nil
}

func (c *Client) endpoint(p string, q url.Values) string {
	u := c.baseURL + p
	if c.teamID != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("teamId", c.teamID)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// NewRequest assembles an authenticated request against the platform API.
func (c *Client) NewRequest(ctx context.Context, method, p string, q url.Values, body interface{}) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, q), rdr)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Fetch performs a request and returns the raw response, whatever its status.
// Streaming consumers classify status codes themselves.
func (c *Client) Fetch(req *http.Request) (*http.Response, error) {
	c.l.Debug("platform API call", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	return c.hc.Do(req)
}

// doJSON performs a request and decodes a JSON body into out (may be nil).
func (c *Client) doJSON(ctx context.Context, method, p string, q url.Values, in, out interface{}) error {
	req, err := c.NewRequest(ctx, method, p, q, in)
	if err != nil {
		return err
	}
	resp, err := c.Fetch(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return status.ErrInvalidResponse.Wrap(err)
	}
	return nil
}

// decodeError maps the platform error envelope onto *Error, falling back
// to the raw status when the body is not the expected envelope.
func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return status.ErrNotFound.Wrap(apiErr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return status.ErrUnauthorized.Wrap(apiErr)
	}
	return apiErr
}
