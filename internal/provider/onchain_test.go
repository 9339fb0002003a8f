package provider

import (
	"context"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newTestOnChainProvider(transport roundTripFunc) *OnChainProvider {
	p := NewOnChainProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	p.limiter = NewRateLimiter(10, time.Millisecond)
	p.rc.http = &http.Client{Transport: transport}
	return p
}

func TestFetchTokenActivityCountsDistinctParticipants(t *testing.T) {
	t.Parallel()

	p := newTestOnChainProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/api/v2/tokens/0xabc/transfers") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"items": [
			{"from": {"hash": "0xAA"}, "to": {"hash": "0xbb"}},
			{"from": {"hash": "0xaa"}, "to": {"hash": "0xcc"}},
			{"from": {"hash": ""}, "to": {"hash": "0xbb"}}
		]}`), nil
	})

	activity, ferr := p.FetchTokenActivity(context.Background(), "0xabc")
	if ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
	if activity.ActiveAddresses != 3 {
		t.Fatalf("expected 3 distinct participants, got %d", activity.ActiveAddresses)
	}
	if activity.TransferCount != 3 {
		t.Fatalf("expected 3 transfers, got %d", activity.TransferCount)
	}
}

func TestFetchTokenActivityRequiresContract(t *testing.T) {
	t.Parallel()

	p := newTestOnChainProvider(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected without a contract")
		return nil, nil
	})

	_, ferr := p.FetchTokenActivity(context.Background(), "  ")
	if ferr == nil {
		t.Fatal("expected error for empty contract")
	}
	if !strings.Contains(ferr.Cause, "no contract configured") {
		t.Fatalf("unexpected cause: %s", ferr.Cause)
	}
}

func TestFetchTokenSupplyScalesByDecimals(t *testing.T) {
	t.Parallel()

	p := newTestOnChainProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"total_supply": "1000000000000000000000"}`), nil
	})

	supply, ferr := p.FetchTokenSupply(context.Background(), "0xabc", 18)
	if ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
	if math.Abs(supply-1000) > 1e-9 {
		t.Fatalf("expected supply 1000, got %f", supply)
	}
}

func TestFetchTokenSupplyNonNumeric(t *testing.T) {
	t.Parallel()

	p := newTestOnChainProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"total_supply": "n/a"}`), nil
	})

	_, ferr := p.FetchTokenSupply(context.Background(), "0xabc", 18)
	if ferr == nil {
		t.Fatal("expected error for non-numeric supply")
	}
	if !strings.Contains(ferr.Cause, "total_supply") {
		t.Fatalf("expected cause to name the field, got: %s", ferr.Cause)
	}
}

func TestOnChainProviderDefaultBaseURL(t *testing.T) {
	t.Parallel()

	p := NewOnChainProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	if p.baseURL != onchainDefaultBaseURL {
		t.Fatalf("expected default base url, got %s", p.baseURL)
	}

	p = NewOnChainProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://custom/")
	if p.baseURL != "http://custom" {
		t.Fatalf("expected trailing slash trimmed, got %s", p.baseURL)
	}
}
