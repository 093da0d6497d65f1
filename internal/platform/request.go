package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Sentinel errors for platform failures.
var (
	// ErrRateLimited is returned once every allowed attempt has hit
	// HTTP 429.
	ErrRateLimited = errors.New("platform: rate limited")

	// ErrAuthenticationFailed is returned when login does not yield a
	// complete session cookie pair.
	ErrAuthenticationFailed = errors.New("platform: authentication failed")

	// ErrUnexpectedResponseShape is returned when a payout listing body
	// matches none of the known envelope shapes.
	ErrUnexpectedResponseShape = errors.New("platform: unexpected response shape")
)

// StatusError represents a non-2xx response from the platform.
type StatusError struct {
	StatusCode int
	Body       []byte

	// RetryAfter carries the server-supplied backoff for 429 responses,
	// zero when the header was absent or unparsable.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// isRateLimited reports whether err carries an HTTP 429, whether it came
// back as a response status or wrapped inside a transport-level error.
// Both forms take the same retry path.
func isRateLimited(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return se, true
	}
	return nil, false
}

// response is the outcome of a successful platform call.
type response struct {
	body    []byte
	cookies []*http.Cookie
}

// doOnce performs a single HTTP request. Non-2xx statuses are returned
// as *StatusError.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, cookies []*http.Cookie) (*response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       body,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return &response{
		body:    body,
		cookies: resp.Cookies(),
	}, nil
}

// do performs a request, retrying rate-limited attempts with backoff.
// The attempt cap is strict: once the final attempt comes back 429, the
// call fails with ErrRateLimited and no further request is made. Any
// other failure surfaces immediately.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, cookies []*http.Cookie) (*response, error) {
	backoff := c.baseBackoff

	for attempt := 1; ; attempt++ {
		resp, err := c.doOnce(ctx, method, path, query, payload, cookies)
		if err == nil {
			return resp, nil
		}

		se, limited := isRateLimited(err)
		if !limited {
			return nil, err
		}

		if attempt >= c.maxAttempts {
			return nil, fmt.Errorf("%w: %d attempts exhausted on %s", ErrRateLimited, attempt, path)
		}

		delay := backoff
		if se.RetryAfter > 0 {
			delay = se.RetryAfter
		}
		backoff *= 2

		c.logger.Warn("rate limited, backing off",
			"path", path,
			"attempt", attempt,
			"delay", delay,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// parseRetryAfter reads a Retry-After header value in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
