package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/session"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Client talks to the backend rooted at baseURL.
type Client struct {
	baseURL  string
	http     *http.Client
	transfer *http.Client
	session  *session.Session
	log      logging.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport used for API calls. A cookie jar is
// added when the client has none.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTransferClient replaces the client used for presigned transfers.
func WithTransferClient(h *http.Client) Option {
	return func(c *Client) { c.transfer = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client. sess supplies the access token and workspace.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		transfer: &http.Client{},
		session:  sess,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Session returns the session the client was built with.
func (c *Client) Session() *session.Session {
	return c.session
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return b, nil
}

// send performs one HTTP exchange and reads the whole body.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, headers map[string]string) (response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}

	c.log.Debug(ctx, "api call", "method", method, "path", path, "status", resp.StatusCode)
	return response{status: resp.StatusCode, body: data}, nil
}

func bearer(token string) string {
	return "Bearer " + token
}

// authRequest runs a call of the auth pipeline: no workspace header and no
// refresh; the bearer token is sent only when non-empty.
func (c *Client) authRequest(ctx context.Context, method, path, token string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	headers := map[string]string{}
	if token != "" {
		headers[common.AuthorizationHeaderName] = bearer(token)
	}

	resp, err := c.send(ctx, method, path, payload, headers)
	if err != nil {
		return err
	}
	return authDecoding.decode(resp, out)
}
