package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Endpoints is the subset of the debugging HTTP API tabshelf relies on.
// *Client implements it; tests can substitute a fake.
type Endpoints interface {
	Version(ctx context.Context) (Version, error)
	List(ctx context.Context) ([]Target, error)
	New(ctx context.Context, rawURL string) (Target, error)
	Activate(ctx context.Context, id string) error
	Close(ctx context.Context, id string) error
}

var _ Endpoints = (*Client)(nil)

// Client talks to a browser's remote debugging port.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAddr      = "127.0.0.1:9222"
	defaultUserAgent = "tabshelf/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for addr, a host:port or http URL.
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized endpoint root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Version returns browser metadata including the browser websocket URL.
func (c *Client) Version(ctx context.Context) (Version, error) {
	var v Version
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/json/version"}, &v); err != nil {
		return Version{}, err
	}
	if v.WebSocketDebuggerURL == "" {
		return Version{}, fmt.Errorf("browser did not report a debugger url")
	}
	return v, nil
}

// List returns every debuggable target, pages first in most recently used order.
func (c *Client) List(ctx context.Context) ([]Target, error) {
	var targets []Target
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/json/list"}, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// New opens rawURL in a new tab of the focused window.
func (c *Client) New(ctx context.Context, rawURL string) (Target, error) {
	rel := &url.URL{Path: "/json/new", RawQuery: url.QueryEscape(rawURL)}
	var t Target
	// Chrome 111+ rejects GET for /json/new.
	if err := c.do(ctx, http.MethodPut, rel, &t); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Activate brings the target to the foreground of its window.
func (c *Client) Activate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("target id required")
	}
	return c.do(ctx, http.MethodGet, &url.URL{Path: "/json/activate/" + url.PathEscape(id)}, nil)
}

// Close closes the target.
func (c *Client) Close(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("target id required")
	}
	return c.do(ctx, http.MethodGet, &url.URL{Path: "/json/close/" + url.PathEscape(id)}, nil)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("devtools %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse devtools url %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return nil, fmt.Errorf("parse devtools url %q: unsupported scheme %q", addr, u.Scheme)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
