// Package api is the HTTP gateway to the items service.
//
// The client reads the bearer token from its TokenSource on every call
// and never caches it. When no token is stored the Authorization header
// is left out and the server's rejection comes back as a TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Makepad-fr/itemdash/internal/logging"
)

// maxErrorBody bounds how much of a failed response is kept for logs.
const maxErrorBody = 512

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() (token string, ok bool, err error)
}

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Data   []byte
}

// Client talks JSON to the items service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// New builds a client for baseURL. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		log:     logging.NopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	fail := func(kind ErrorKind, err error) *TransportError {
		return &TransportError{Method: method, Path: path, Kind: kind, Err: err}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fail(KindNetwork, fmt.Errorf("encode body: %w", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fail(KindNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, fail(KindNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(KindNetwork, fmt.Errorf("read body: %w", err))
	}
	c.log.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(data)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &TransportError{
			Method: method,
			Path:   path,
			Kind:   KindStatus,
			Status: resp.StatusCode,
			Body:   snippet,
		}
	}
	return &Response{Status: resp.StatusCode, Data: data}, nil
}

// authorize sets the bearer header from the current token, if any.
func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	tok, ok, err := c.tokens.Token()
	if err != nil {
		c.log.Warn("read token", "error", err)
		return
	}
	if !ok || tok == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+tok)
}

// decode unmarshals a response body into v, reporting bad JSON as a
// malformed-response TransportError.
func decode(method, path string, r *Response, v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return &TransportError{Method: method, Path: path, Kind: KindMalformed, Status: r.Status, Err: err}
	}
	return nil
}
