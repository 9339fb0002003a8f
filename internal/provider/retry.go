package provider

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// maxFetchAttempts bounds the retry loop. Only HTTP 429 consumes
// additional attempts; everything else fails on the first try.
const maxFetchAttempts = 5

// retryClient executes one logical GET against a rate-limited upstream.
// Backoff before attempt n is baseDelay*2^n plus up to one second of
// jitter. The jitter source and sleep function are injectable so tests
// can run deterministically without wall-clock waits.
type retryClient struct {
	http      *http.Client
	upstream  string
	baseDelay time.Duration
	jitter    func() float64
	sleep     func(ctx context.Context, d time.Duration) error
}

func newRetryClient(upstream string, timeout, baseDelay time.Duration) *retryClient {
	return &retryClient{
		http:      &http.Client{Timeout: timeout},
		upstream:  upstream,
		baseDelay: baseDelay,
		jitter:    rand.Float64,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *retryClient) backoffDelay(attempt int) time.Duration {
	delay := c.baseDelay * (1 << attempt)
	return delay + time.Duration(c.jitter()*float64(time.Second))
}

// getJSON performs the call and decodes the body into out. It always
// returns either nil (payload decoded) or a FetchError; no raw error
// escapes. Unknown response fields are dropped by decoding, missing
// ones are left at out's zero values.
func (c *retryClient) getJSON(ctx context.Context, op, url string, header http.Header, out any) *FetchError {
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
				return &FetchError{Upstream: c.upstream, Op: op, Cause: "cancelled during backoff: " + err.Error()}
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &FetchError{Upstream: c.upstream, Op: op, Cause: "build request: " + err.Error()}
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return &FetchError{Upstream: c.upstream, Op: op, Cause: "transport: " + err.Error()}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &FetchError{
				Upstream: c.upstream,
				Op:       op,
				Cause:    "HTTP " + resp.Status + ": " + string(body),
			}
		}

		decodeErr := json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if decodeErr != nil {
			return &FetchError{Upstream: c.upstream, Op: op, Cause: "decode payload: " + decodeErr.Error()}
		}
		return nil
	}

	return &FetchError{
		Upstream:    c.upstream,
		Op:          op,
		Cause:       "exhausted retries under rate limiting",
		RateLimited: true,
	}
}
