package provider

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const onchainDefaultBaseURL = "https://eth.blockscout.com"

// OnChainProvider derives activity proxies from a Blockscout-compatible
// token API: distinct transfer participants stand in for active
// addresses, and the transfer listing length for transaction count.
type OnChainProvider struct {
	rc      *retryClient
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewOnChainProvider(tracer trace.Tracer, baseURL string) *OnChainProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = onchainDefaultBaseURL
	}
	return &OnChainProvider{
		rc:      newRetryClient("onchain", 15*time.Second, 2*time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(10, 6*time.Second),
	}
}

// FetchTokenActivity lists recent transfers for a contract and reduces
// them to the two proxies the record tracks.
func (p *OnChainProvider) FetchTokenActivity(ctx context.Context, contract string) (*TokenActivity, *FetchError) {
	_, span := p.tracer.Start(ctx, "onchain.fetch-token-activity")
	defer span.End()

	if strings.TrimSpace(contract) == "" {
		return nil, &FetchError{Upstream: "onchain", Op: "fetch-token-activity", Cause: "no contract configured for asset"}
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Upstream: "onchain", Op: "fetch-token-activity", Cause: "rate limit wait: " + err.Error()}
	}

	u := fmt.Sprintf("%s/api/v2/tokens/%s/transfers", p.baseURL, contract)

	var payload struct {
		Items []struct {
			From struct {
				Hash string `json:"hash"`
			} `json:"from"`
			To struct {
				Hash string `json:"hash"`
			} `json:"to"`
		} `json:"items"`
	}
	if ferr := p.rc.getJSON(ctx, "fetch-token-activity", u, nil, &payload); ferr != nil {
		return nil, ferr
	}

	participants := make(map[string]struct{}, len(payload.Items)*2)
	for _, item := range payload.Items {
		if h := strings.ToLower(strings.TrimSpace(item.From.Hash)); h != "" {
			participants[h] = struct{}{}
		}
		if h := strings.ToLower(strings.TrimSpace(item.To.Hash)); h != "" {
			participants[h] = struct{}{}
		}
	}

	return &TokenActivity{
		Contract:        contract,
		ActiveAddresses: int64(len(participants)),
		TransferCount:   int64(len(payload.Items)),
	}, nil
}

// FetchTokenSupply reads the contract's raw total supply and scales it
// into a human unit using externally supplied decimals metadata. The
// payload's own decimals field is advisory and often absent.
func (p *OnChainProvider) FetchTokenSupply(ctx context.Context, contract string, decimals int) (float64, *FetchError) {
	_, span := p.tracer.Start(ctx, "onchain.fetch-token-supply")
	defer span.End()

	if strings.TrimSpace(contract) == "" {
		return 0, &FetchError{Upstream: "onchain", Op: "fetch-token-supply", Cause: "no contract configured for asset"}
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, &FetchError{Upstream: "onchain", Op: "fetch-token-supply", Cause: "rate limit wait: " + err.Error()}
	}

	u := fmt.Sprintf("%s/api/v2/tokens/%s", p.baseURL, contract)

	var payload struct {
		TotalSupply string `json:"total_supply"`
	}
	if ferr := p.rc.getJSON(ctx, "fetch-token-supply", u, nil, &payload); ferr != nil {
		return 0, ferr
	}

	raw, ok := parseFloatString(payload.TotalSupply)
	if !ok {
		return 0, &FetchError{
			Upstream: "onchain",
			Op:       "fetch-token-supply",
			Cause:    fmt.Sprintf("field total_supply is not numeric: %q", payload.TotalSupply),
		}
	}
	if decimals < 0 {
		decimals = 0
	}
	return raw / math.Pow10(decimals), nil
}
