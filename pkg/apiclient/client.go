package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRetryStatuses is the transient status set used when
// Config.RetryStatuses is empty: throttling plus upstream gateway failures.
var DefaultRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

const (
	defaultBackoffBase = 300 * time.Millisecond
	defaultMaxBackoff  = 10 * time.Second
	minRetryWait       = time.Millisecond
)

// Config controls a Client. It is copied at construction and immutable
// afterwards.
type Config struct {
	// BaseURL is the absolute root every request path is resolved against.
	BaseURL string
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Backoff computes the wait before each retry. Defaults to
	// ExponentialBackoff(300ms).
	Backoff BackoffPolicy
	// MaxBackoff caps a single retry wait. Defaults to 10s.
	MaxBackoff time.Duration
	// RetryStatuses lists statuses treated as transient. Defaults to
	// DefaultRetryStatuses.
	RetryStatuses []int
	// Headers are applied to every request.
	Headers map[string]string
}

// Response is a fully read HTTP response. Validators operate on it without
// performing further I/O.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Elapsed    time.Duration
	Attempts   int
	Method     string
	URL        string
}

// Client issues JSON requests against one base URL, retrying transient
// failures with deterministic backoff. One Client holds one HTTP session.
type Client struct {
	rc  *resty.Client
	cfg Config
	log Logger
}

// New validates cfg and builds a Client. Configuration mistakes surface
// here, not on the first request.
func New(cfg Config, log Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q (must be absolute http or https)", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %v (must be positive)", cfg.Timeout)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid max retries %d (must be zero or positive)", cfg.MaxRetries)
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ExponentialBackoff(defaultBackoffBase)
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if len(cfg.RetryStatuses) == 0 {
		cfg.RetryStatuses = DefaultRetryStatuses
	}

	c := &Client{cfg: cfg, log: ensureLogger(log)}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(minRetryWait).
		SetRetryMaxWaitTime(cfg.MaxBackoff)
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}

	rc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if r == nil {
			return false // request assembly failed, retrying cannot help
		}
		return c.Transient(r.StatusCode(), err)
	})
	rc.SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
		wait := c.cfg.Backoff(r.Request.Attempt)
		if wait < minRetryWait {
			wait = minRetryWait
		}
		return wait, nil
	})
	rc.AddRetryHook(func(r *resty.Response, err error) {
		fields := map[string]any{"max_retries": cfg.MaxRetries}
		if r != nil && r.Request != nil {
			fields["method"] = r.Request.Method
			fields["url"] = r.Request.URL
			fields["attempt"] = r.Request.Attempt
			fields["status"] = r.StatusCode()
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		c.log.WarnObj("transient failure, retrying", "http_retry", fields)
	})
	rc.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		c.log.DebugObj("attempt completed", "http_attempt", map[string]any{
			"method":     r.Request.Method,
			"url":        r.Request.URL,
			"status":     r.StatusCode(),
			"attempt":    r.Request.Attempt,
			"elapsed_ms": r.Time().Milliseconds(),
			"body_size":  len(r.Body()),
		})
		return nil
	})

	c.rc = rc
	return c, nil
}

// Get issues a GET for path with optional query params.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post issues a POST with body serialized as JSON.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT with body serialized as JSON.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do funnels every verb through one resty request and returns either a
// typed failure or a fully read Response. A transient status that survives
// the whole retry budget is a connectivity failure, never a Response.
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body interface{}) (*Response, error) {
	if c == nil || c.rc == nil {
		return nil, NewConnectivityError("client not initialized", method, path, 0, nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req := c.rc.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	rr, err := req.Execute(method, path)
	elapsed := time.Since(start)

	attempts := 1
	fullURL := joinURL(c.cfg.BaseURL, path)
	if rr != nil && rr.Request != nil {
		if rr.Request.Attempt > 0 {
			attempts = rr.Request.Attempt
		}
		if rr.Request.URL != "" {
			fullURL = rr.Request.URL
		}
	}

	if err != nil {
		c.log.ErrorObj("request failed", "request_error", map[string]any{
			"method":   method,
			"url":      fullURL,
			"attempts": attempts,
			"error":    err.Error(),
		})
		if isTimeout(err) {
			return nil, NewTimeoutError("request timed out", method, fullURL, attempts, err)
		}
		return nil, NewConnectivityError("request transport failed", method, fullURL, attempts, err)
	}

	status := rr.StatusCode()
	if c.Transient(status, nil) {
		// Still transient after the final attempt: the budget is spent.
		c.log.ErrorObj("request failed", "request_error", map[string]any{
			"method":      method,
			"url":         fullURL,
			"attempts":    attempts,
			"last_status": status,
		})
		return nil, NewRetryBudgetError(method, fullURL, attempts, status)
	}

	resp := &Response{
		StatusCode: status,
		Headers:    rr.Header(),
		Body:       rr.Body(),
		Elapsed:    elapsed,
		Attempts:   attempts,
		Method:     method,
		URL:        fullURL,
	}
	c.log.InfoObj("request completed", "request_meta", map[string]any{
		"method":     method,
		"url":        fullURL,
		"status":     status,
		"attempts":   attempts,
		"elapsed_ms": elapsed.Milliseconds(),
		"body_size":  len(resp.Body),
	})
	return resp, nil
}

// BaseURL reports the root every request path is resolved against.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.cfg.BaseURL
}

// Transient reports whether a status or transport error is worth another
// attempt. Explicit cancellation is never transient.
func (c *Client) Transient(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	for _, s := range c.cfg.RetryStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Close releases idle connections held by the session. Safe on a nil client
// and callable more than once.
func (c *Client) Close() {
	if c == nil || c.rc == nil {
		return
	}
	c.rc.GetClient().CloseIdleConnections()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
