// Package apiclient is the shared HTTP pipeline for all backend calls.
// Every request is resolved against a mutable base address and passes through
// ordered request and response interceptors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
)

// Response is the buffered result of a call, passed to response interceptors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestInterceptor may mutate an outgoing request. A returned error aborts the call.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor observes a completed call. resp is nil when the transport failed.
// It returns the error the caller should see; returning err unchanged passes it through.
type ResponseInterceptor func(req *http.Request, resp *Response, err error) error

// InterceptorID identifies a registered interceptor for Eject.
type InterceptorID uint64

type requestEntry struct {
	id InterceptorID
	fn RequestInterceptor
}

type responseEntry struct {
	id InterceptorID
	fn ResponseInterceptor
}

// Client issues JSON requests against the current base address.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger

	baseMu  sync.RWMutex
	baseURL *url.URL

	icMu     sync.RWMutex
	nextID   InterceptorID
	requests []requestEntry
	response []responseEntry
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client // optional; a client with a cookie jar is created when nil
	Logger     *slog.Logger // optional
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base, err := parseBase(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: hc,
		userAgent:  opts.UserAgent,
		logger:     logger.With("component", "apiclient"),
		baseURL:    base,
	}, nil
}

func parseBase(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	return u, nil
}

// SetBaseURL replaces the base address. Requests built afterwards use it.
func (c *Client) SetBaseURL(raw string) error {
	u, err := parseBase(raw)
	if err != nil {
		return err
	}
	c.baseMu.Lock()
	c.baseURL = u
	c.baseMu.Unlock()
	return nil
}

// BaseURL returns the current base address.
func (c *Client) BaseURL() string {
	c.baseMu.RLock()
	defer c.baseMu.RUnlock()
	return c.baseURL.String()
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	c.baseMu.RLock()
	defer c.baseMu.RUnlock()
	return c.baseURL.ResolveReference(ref), nil
}

// UseRequest appends an outgoing interceptor. Interceptors run in registration order.
func (c *Client) UseRequest(fn RequestInterceptor) InterceptorID {
	c.icMu.Lock()
	defer c.icMu.Unlock()
	c.nextID++
	c.requests = append(c.requests, requestEntry{id: c.nextID, fn: fn})
	return c.nextID
}

// UseResponse appends an incoming interceptor. Interceptors run in registration order.
func (c *Client) UseResponse(fn ResponseInterceptor) InterceptorID {
	c.icMu.Lock()
	defer c.icMu.Unlock()
	c.nextID++
	c.response = append(c.response, responseEntry{id: c.nextID, fn: fn})
	return c.nextID
}

// Eject removes a previously registered interceptor. Unknown ids are ignored.
func (c *Client) Eject(id InterceptorID) {
	c.icMu.Lock()
	defer c.icMu.Unlock()
	for i, e := range c.requests {
		if e.id == id {
			c.requests = append(c.requests[:i:i], c.requests[i+1:]...)
			return
		}
	}
	for i, e := range c.response {
		if e.id == id {
			c.response = append(c.response[:i:i], c.response[i+1:]...)
			return
		}
	}
}

func (c *Client) snapshot() ([]RequestInterceptor, []ResponseInterceptor) {
	c.icMu.RLock()
	defer c.icMu.RUnlock()
	reqs := make([]RequestInterceptor, len(c.requests))
	for i, e := range c.requests {
		reqs[i] = e.fn
	}
	resps := make([]ResponseInterceptor, len(c.response))
	for i, e := range c.response {
		resps[i] = e.fn
	}
	return reqs, resps
}

// Get issues a GET and decodes the JSON response into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with in encoded as JSON and decodes the response into out (if non-nil).
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// Do runs a request through the pipeline. Non-2xx responses yield *HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	reqInterceptors, respInterceptors := c.snapshot()
	for _, fn := range reqInterceptors {
		if icErr := fn(req); icErr != nil {
			return fmt.Errorf("request interceptor: %w", icErr)
		}
	}

	start := time.Now()
	resp, err := c.send(req)
	c.logCall(req, resp, err, time.Since(start))

	for _, fn := range respInterceptors {
		err = fn(req, resp, err)
	}
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if decodeErr := json.Unmarshal(resp.Body, out); decodeErr != nil {
		return fmt.Errorf("decode %s %s response: %w", method, req.URL.Path, decodeErr)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			return nil, fmt.Errorf("encode request body: %w", marshalErr)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", req.Method, req.URL.Redacted(), err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, &HTTPError{Method: req.Method, URL: req.URL.Redacted(), StatusCode: httpResp.StatusCode, Body: data}
	}
	return resp, nil
}

func (c *Client) logCall(req *http.Request, resp *Response, err error, took time.Duration) {
	attrs := []any{"method", req.Method, "url", req.URL.Redacted(), "duration_ms", took.Milliseconds()}
	if resp != nil {
		attrs = append(attrs, "status", resp.StatusCode)
	}
	if err != nil && resp == nil {
		c.logger.WarnContext(req.Context(), "request failed", append(attrs, "error", err)...)
		return
	}
	c.logger.DebugContext(req.Context(), "request completed", attrs...)
}
