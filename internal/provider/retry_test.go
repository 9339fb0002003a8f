package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func newTestRetryClient(transport roundTripFunc) *retryClient {
	rc := newRetryClient("test", time.Second, time.Millisecond)
	rc.http = &http.Client{Transport: transport}
	rc.jitter = func() float64 { return 0 }
	rc.sleep = func(context.Context, time.Duration) error { return nil }
	return rc
}

func TestGetJSONRetriesOnTooManyRequests(t *testing.T) {
	attempts := 0
	rc := newTestRetryClient(func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts < 4 {
			return jsonResponse(http.StatusTooManyRequests, ""), nil
		}
		return jsonResponse(http.StatusOK, `{"value": 42}`), nil
	})

	var out struct {
		Value int `json:"value"`
	}
	if ferr := rc.getJSON(context.Background(), "op", "http://example/x", nil, &out); ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", attempts)
	}
	if out.Value != 42 {
		t.Fatalf("expected decoded value 42, got %d", out.Value)
	}
}

func TestGetJSONExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	rc := newTestRetryClient(func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusTooManyRequests, ""), nil
	})

	var out map[string]any
	ferr := rc.getJSON(context.Background(), "op", "http://example/x", nil, &out)
	if ferr == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !ferr.RateLimited {
		t.Fatal("expected RateLimited to be set")
	}
	if !strings.Contains(ferr.Cause, "exhausted retries under rate limiting") {
		t.Fatalf("unexpected cause: %s", ferr.Cause)
	}
	if attempts != maxFetchAttempts {
		t.Fatalf("expected %d attempts, got %d", maxFetchAttempts, attempts)
	}
}

func TestGetJSONDoesNotRetryServerErrors(t *testing.T) {
	attempts := 0
	rc := newTestRetryClient(func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusInternalServerError, "boom"), nil
	})

	var out map[string]any
	ferr := rc.getJSON(context.Background(), "op", "http://example/x", nil, &out)
	if ferr == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if ferr.RateLimited {
		t.Fatal("a server error is not a rate limit failure")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestGetJSONDecodeFailure(t *testing.T) {
	rc := newTestRetryClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not json"), nil
	})

	var out map[string]any
	ferr := rc.getJSON(context.Background(), "op", "http://example/x", nil, &out)
	if ferr == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(ferr.Cause, "decode payload") {
		t.Fatalf("unexpected cause: %s", ferr.Cause)
	}
}

func TestGetJSONSetsHeaders(t *testing.T) {
	rc := newTestRetryClient(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Accept") != "application/json" {
			t.Fatalf("expected Accept header, got %q", req.Header.Get("Accept"))
		}
		if req.Header.Get("X-Custom") != "yes" {
			t.Fatalf("expected custom header forwarded, got %q", req.Header.Get("X-Custom"))
		}
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	header := http.Header{}
	header.Set("X-Custom", "yes")
	var out map[string]any
	if ferr := rc.getJSON(context.Background(), "op", "http://example/x", header, &out); ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
}

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	rc := newRetryClient("test", time.Second, 100*time.Millisecond)
	rc.jitter = func() float64 { return 0 }

	if got := rc.backoffDelay(1); got != 200*time.Millisecond {
		t.Fatalf("attempt 1: expected 200ms, got %v", got)
	}
	if got := rc.backoffDelay(3); got != 800*time.Millisecond {
		t.Fatalf("attempt 3: expected 800ms, got %v", got)
	}

	rc.jitter = func() float64 { return 0.5 }
	if got := rc.backoffDelay(1); got != 200*time.Millisecond+500*time.Millisecond {
		t.Fatalf("expected jitter added, got %v", got)
	}
}

func TestGetJSONCancelledDuringBackoff(t *testing.T) {
	rc := newTestRetryClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, ""), nil
	})
	rc.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	var out map[string]any
	ferr := rc.getJSON(context.Background(), "op", "http://example/x", nil, &out)
	if ferr == nil {
		t.Fatal("expected error when backoff is cancelled")
	}
	if !strings.Contains(ferr.Cause, "cancelled during backoff") {
		t.Fatalf("unexpected cause: %s", ferr.Cause)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	plain := &FetchError{Upstream: "market", Op: "fetch-snapshot", Cause: "boom"}
	if plain.Error() != "market fetch-snapshot: boom" {
		t.Fatalf("unexpected message: %s", plain.Error())
	}
	limited := &FetchError{Upstream: "news", Op: "fetch-articles", Cause: "x", RateLimited: true}
	if !strings.Contains(limited.Error(), "rate limited") {
		t.Fatalf("expected rate limited marker: %s", limited.Error())
	}
}
