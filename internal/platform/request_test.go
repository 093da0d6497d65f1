package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRateLimitRetry(5, time.Millisecond))

	resp, err := client.do(context.Background(), http.MethodGet, "/", nil, nil, nil)
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if string(resp.body) != `{"ok":true}` {
		t.Errorf("body = %q, want %q", resp.body, `{"ok":true}`)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDoRespectsRetryAfterHeader(t *testing.T) {
	var calls atomic.Int32
	var gap time.Duration
	var last time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if calls.Add(1) == 1 {
			last = now
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		gap = now.Sub(last)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRateLimitRetry(5, time.Millisecond))

	if _, err := client.do(context.Background(), http.MethodGet, "/", nil, nil, nil); err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if gap < time.Second {
		t.Errorf("retry gap = %v, want >= 1s from Retry-After", gap)
	}
}

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRateLimitRetry(5, time.Millisecond))

	_, err := client.do(context.Background(), http.MethodGet, "/", nil, nil, nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	// The cap is strict: the call after the final 429 is never made.
	if got := calls.Load(); got != 5 {
		t.Errorf("calls = %d, want exactly 5", got)
	}
}

func TestDoFailsFastOnOtherStatuses(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRateLimitRetry(5, time.Millisecond))

	_, err := client.do(context.Background(), http.MethodGet, "/", nil, nil, nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", se.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-429)", got)
	}
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRateLimitRetry(5, time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.do(ctx, http.MethodGet, "/", nil, nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestIsRateLimitedSeesWrappedErrors(t *testing.T) {
	// A 429 surfaced through error wrapping takes the same retry path as
	// a response-carried 429.
	wrapped := fmt.Errorf("transport failed: %w", &StatusError{StatusCode: http.StatusTooManyRequests})

	if _, ok := isRateLimited(wrapped); !ok {
		t.Error("isRateLimited = false for wrapped 429, want true")
	}

	if _, ok := isRateLimited(&StatusError{StatusCode: http.StatusUnauthorized}); ok {
		t.Error("isRateLimited = true for 401, want false")
	}
}
