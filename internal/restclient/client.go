// internal/restclient/client.go
//
// HTTP client for the players backend.
//
// Context
// -------
// The panel never stores players; every table render reads the current page
// from the backend and every mutation is forwarded to it.  Client wraps the
// five endpoints of `/rest/players`:
//
//	GET    /rest/players?pageNumber=&pageSize=   → []player.Player
//	GET    /rest/players/count                   → int
//	POST   /rest/players                         ← player.CreateRequest
//	POST   /rest/players/{id}                    ← player.UpdateRequest
//	DELETE /rest/players/{id}
//
// Every call is at-most-once.  There is no retry loop; callers refresh on
// success and surface the error otherwise.
//
// Notes
// -----
//   - Any status ≥ 400 becomes a *StatusError carrying the body snippet.
//   - Each call records a counter and a latency sample per operation.
//   - Oxford commas, two spaces after periods.
package restclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yanizio/playeradmin/internal/logger"
	"github.com/yanizio/playeradmin/internal/metrics"
	"github.com/yanizio/playeradmin/internal/player"
)

const (
	basePath       = "/rest/players"
	defaultTimeout = 10 * time.Second
	maxErrBody     = 512
)

// StatusError is returned when the backend answers with status ≥ 400.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: backend status %d: %s", e.Op, e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Client talks to one players backend.  Safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option tweaks a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New parses baseURL (scheme and host, optional path prefix) and returns a
// ready Client.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

//
// endpoints
//

// List returns one page of players.  pageNumber is zero-based.
func (c *Client) List(ctx context.Context, pageNumber, pageSize int) ([]player.Player, error) {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var out []player.Player
	if err := c.do(ctx, "list", http.MethodGet, basePath, q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []player.Player{}
	}
	return out, nil
}

// Count returns the total number of players.
func (c *Client) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.do(ctx, "count", http.MethodGet, basePath+"/count", nil, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Create submits a new player.
func (c *Client) Create(ctx context.Context, req player.CreateRequest) error {
	return c.do(ctx, "create", http.MethodPost, basePath, nil, req, nil)
}

// Update replaces the mutable fields of player id.
func (c *Client) Update(ctx context.Context, id int64, req player.UpdateRequest) error {
	return c.do(ctx, "update", http.MethodPost, basePath+"/"+strconv.FormatInt(id, 10), nil, req, nil)
}

// Delete removes player id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, basePath+"/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

//
// transport
//

// do performs one round trip.  in is JSON-encoded when non-nil; out is
// decoded from the body when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
		metrics.BackendRequestSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			logger.FromContext(ctx).Warnw("backend request failed",
				"op", op, "method", method, "path", path, "err", err)
		}
	}()

	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
