// Package api is the HTTP client of the stock dashboard backend.
//
// Every method maps one endpoint. Failures are reported with the error types of
// the stockdash package: a *stockdash.BackendError when the backend explains
// the failure in a JSON body, a *stockdash.TransportError otherwise.
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

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/stockdash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every request unless WithTimeout says otherwise.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries a unique id per request, logged with its outcome.
const RequestIDHeader = "X-Request-ID"

// Client talks to the backend at a base URL. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     zerolog.Logger
	timeout time.Duration
	cache   string // directory of the daily cache, empty when disabled
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the timeout of each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithDailyCache stores successful market data responses in dir, os.TempDir()
// if empty. Entries expire at the end of the day.
func WithDailyCache(dir string) Option {
	return func(c *Client) {
		if dir == "" {
			dir = defaultCacheDir()
		}
		c.cache = dir
	}
}

// New returns a client for the backend at baseURL, e.g. "http://localhost:4000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: want an http or https url", baseURL)
	}
	c := &Client{
		base:    u,
		log:     zerolog.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	h := new(http.Client)
	if c.http != nil {
		*h = *c.http
	}
	if h.Transport == nil {
		h.Transport = http.DefaultTransport
	}
	if c.cache != "" {
		h.Transport = &diskCache{base: h.Transport, dir: c.cache, log: c.log}
	}
	h.Timeout = c.timeout
	c.http = h
	return c, nil
}

// BaseURL returns the backend url.
func (c *Client) BaseURL() string { return c.base.String() }

// do sends one request and returns the body of a 2xx response.
// body, when not nil, is sent as JSON.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	op := method + " " + path
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, &stockdash.TransportError{Op: op, Err: err}
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Str("request_id", id).Str("op", op).Err(err).Msg("request failed")
		return nil, &stockdash.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, &stockdash.TransportError{Op: op, Err: err}
	}
	c.log.Debug().
		Str("request_id", id).
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := errorMessage(buf.Bytes()); ok {
			return nil, &stockdash.BackendError{Op: op, Status: resp.StatusCode, Message: msg}
		}
		return nil, &stockdash.TransportError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return buf.Bytes(), nil
}

// get sends a GET and decodes the JSON response into data.
func (c *Client) get(ctx context.Context, path string, query url.Values, data any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, data); err != nil {
		return &stockdash.TransportError{Op: "GET " + path, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}

// post sends payload and checks the {success, error} envelope of the response.
// It returns the response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	op := "POST " + path
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	v, err := decodeAny(body)
	if err != nil {
		return nil, &stockdash.TransportError{Op: op, Err: fmt.Errorf("invalid response: %w", err)}
	}
	success, err := jsonpath.Get("$.success", v)
	if err != nil {
		// Some endpoints answer a bare 2xx without an envelope.
		return body, nil
	}
	if ok, _ := success.(bool); ok {
		return body, nil
	}
	msg, ok := errorMessage(body)
	if !ok {
		msg = "request failed"
	}
	return nil, &stockdash.BackendError{Op: op, Status: http.StatusOK, Message: msg}
}

// errorMessage extracts the "error" text of a JSON body.
func errorMessage(body []byte) (string, bool) {
	v, err := decodeAny(body)
	if err != nil {
		return "", false
	}
	jval, err := jsonpath.Get("$.error", v)
	if err != nil {
		return "", false
	}
	msg, ok := jval.(string)
	if !ok || msg == "" {
		return "", false
	}
	return msg, true
}

// decodeAny decodes untyped JSON, keeping numbers as json.Number.
func decodeAny(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

var (
	_ stockdash.CatalogSource     = (*Client)(nil)
	_ stockdash.PriceSource       = (*Client)(nil)
	_ stockdash.PositionSource    = (*Client)(nil)
	_ stockdash.PositionCreator   = (*Client)(nil)
	_ stockdash.BacktestSubmitter = (*Client)(nil)
	_ stockdash.LogSource         = (*Client)(nil)
)
