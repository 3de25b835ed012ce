package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// Common errors.
var (
	ErrNotFound     = errors.New("http: resource not found")
	ErrForbidden    = errors.New("http: access forbidden")
	ErrUnauthorized = errors.New("http: unauthorized")
	ErrServerError  = errors.New("http: server error")
)

// FetchError is the terminal error of a fetch. Transient reports whether the
// failure was retryable (connection trouble or a retryable status code) and
// the retry budget ran out, as opposed to a permanent condition such as 404.
type FetchError struct {
	URL        string
	StatusCode int // zero when the failure was connection-level
	Transient  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a FetchError that exhausted its retries.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int

	// Timeout for listing GET requests.
	// Default: 30s
	Timeout time.Duration

	// HeadTimeout for completeness HEAD probes.
	// Default: 10s
	HeadTimeout time.Duration

	// RetryAttempts is the total number of attempts per request.
	// Default: 3
	RetryAttempts int

	// RetryBackoff is the initial backoff duration.
	// Default: 1s
	RetryBackoff time.Duration

	// RetryMaxBackoff is the maximum backoff duration.
	// Default: 30s
	RetryMaxBackoff time.Duration
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 100,
		Timeout:             30 * time.Second,
		HeadTimeout:         10 * time.Second,
		RetryAttempts:       3,
		RetryBackoff:        time.Second,
		RetryMaxBackoff:     30 * time.Second,
	}
}

// Client is an HTTP client for autoindex listings and file downloads.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts Options) *Client {
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true, // We want raw bytes for range requests
	}

	return &Client{
		client: &http.Client{Transport: transport},
		opts:   opts,
	}
}

// Get fetches url and returns the whole response body. Used for listing
// pages; the per-call timeout is Options.Timeout.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}

		if retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %s", ErrServerError, resp.Status)
			lastStatus = resp.StatusCode
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}
		return body, nil
	}

	return nil, &FetchError{
		URL:        url,
		StatusCode: lastStatus,
		Transient:  true,
		Err:        fmt.Errorf("after %d attempts: %w", c.opts.RetryAttempts, lastErr),
	}
}

// Head probes url and returns the remote Content-Length, or -1 when the
// server does not report one. The per-call timeout is Options.HeadTimeout.
func (c *Client) Head(ctx context.Context, url string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.HeadTimeout)
	defer cancel()

	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt); err != nil {
				return 0, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return 0, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}
		resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("%w: %s", ErrServerError, resp.Status)
			lastStatus = resp.StatusCode
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			return 0, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
		}

		return resp.ContentLength, nil
	}

	return 0, &FetchError{
		URL:        url,
		StatusCode: lastStatus,
		Transient:  true,
		Err:        fmt.Errorf("after %d attempts: %w", c.opts.RetryAttempts, lastErr),
	}
}

// GetStream opens a download stream for url. When offset > 0 the request
// carries a Range header starting at that byte. Retries cover obtaining the
// response only; reads from the returned body are bounded by ctx alone, so a
// long transfer is never cut off by a fixed timeout. The caller owns Body.
func (c *Client) GetStream(ctx context.Context, url string, offset int64) (*http.Response, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if offset > 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}

		if retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %s", ErrServerError, resp.Status)
			lastStatus = resp.StatusCode
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
		}

		return resp, nil
	}

	return nil, &FetchError{
		URL:        url,
		StatusCode: lastStatus,
		Transient:  true,
		Err:        fmt.Errorf("after %d attempts: %w", c.opts.RetryAttempts, lastErr),
	}
}

// backoff waits before retry attempt number attempt (2-based) with an
// exponentially increasing duration and jitter.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.opts.RetryBackoff * time.Duration(1<<uint(attempt-2))
	if backoff > c.opts.RetryMaxBackoff {
		backoff = c.opts.RetryMaxBackoff
	}

	// Add jitter: 0.5 to 1.5 of backoff
	jitter := time.Duration(float64(backoff) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}

// retryableStatus reports whether a status code is worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// checkStatusCode returns an appropriate error for non-success status codes.
// 2xx and 206 pass; 3xx never reach here because redirects are followed.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("unexpected status code: %d", code)
	}
}
